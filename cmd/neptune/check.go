package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/neptune/internal/storage"
)

var (
	historyLimit int
	historyPrune time.Duration
	historyAll   bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the document against the schema without modifying it",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent changes recorded in the journal",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "neptune %s\n", version)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum entries to show")
	historyCmd.Flags().DurationVar(&historyPrune, "prune", 0, "delete entries older than this before listing")
	historyCmd.Flags().BoolVar(&historyAll, "all", false, "include entries for every document")
	rootCmd.AddCommand(checkCmd, historyCmd, versionCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	path, err := documentPath()
	if err != nil {
		return err
	}
	doc, err := openStore(path).Read()
	if err != nil {
		return failf(1, "%w", err)
	}
	if err := doc.Validate(); err != nil {
		return failf(1, "%s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "ok: %s (%d active, %d completed, %d skipped)\n",
		path, len(doc.Tasks), len(doc.Completed), len(doc.Skipped))
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	if !cfg.JournalEnabled() {
		return failf(1, "journal is disabled")
	}
	journal, err := storage.OpenJournal(cfg.JournalPath)
	if err != nil {
		return err
	}
	defer journal.Close()

	ctx := cmd.Context()
	if historyPrune > 0 {
		removed, err := journal.Prune(ctx, nowFunc().Add(-historyPrune))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "pruned %d entries\n", removed)
	}

	filter := storage.EntryFilter{Limit: historyLimit}
	if !historyAll {
		path, err := documentPath()
		if err != nil {
			return err
		}
		filter.Document = path
	}
	entries, err := journal.List(ctx, filter)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no history")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %-9s  %s\n", e.At.Local().Format("2006-01-02 15:04"), e.Kind, e.Text)
	}
	return nil
}
