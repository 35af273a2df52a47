package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/neptune/internal/launcher"
	"github.com/sandeepkv93/neptune/internal/lifecycle"
	"github.com/sandeepkv93/neptune/internal/logging"
	"github.com/sandeepkv93/neptune/internal/scheduler"
	"github.com/sandeepkv93/neptune/internal/session"
	"github.com/sandeepkv93/neptune/internal/storage"
	"github.com/sandeepkv93/neptune/internal/update"
)

const (
	handoffTimeout = 3 * time.Second
	flushTimeout   = 5 * time.Second
)

func runTUI(cmd *cobra.Command, path string) error {
	inst, err := launcher.Acquire(cfg.StateDir, logger)
	if errors.Is(err, launcher.ErrAlreadyRunning) {
		ctx, cancel := context.WithTimeout(cmd.Context(), handoffTimeout)
		defer cancel()
		if herr := launcher.Handoff(ctx, cfg.StateDir, path); herr != nil {
			return failf(1, "neptune is already running and did not accept %s: %w", path, herr)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "opened %s in the running neptune\n", path)
		return nil
	}
	if err != nil {
		return err
	}
	defer inst.Close()

	// The terminal belongs to the UI from here on.
	fileLogger, closer, err := logging.OpenFile(cfg.LogPath(), logging.OptionsFromConfig(cfg.LogLevel, cfg.LogFormat))
	if err != nil {
		return err
	}
	defer closer.Close()

	var journal storage.Journal = storage.Discard
	if cfg.JournalEnabled() {
		j, jerr := storage.OpenJournal(cfg.JournalPath)
		if jerr != nil {
			fileLogger.Warn("journal unavailable", "path", cfg.JournalPath, "err", jerr)
		} else {
			journal = j
		}
	}

	sess, err := session.Open(session.Options{
		Path:           path,
		Engine:         lifecycle.NewEngine(),
		Logger:         fileLogger,
		Journal:        journal,
		ReloadDebounce: cfg.ReloadDebounce,
		BackupCorrupt:  cfg.BackupCorrupt,
	})
	if err != nil {
		_ = journal.Close()
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		if ferr := sess.Flush(ctx); ferr != nil {
			fileLogger.Error("flush on exit", "err", ferr)
		}
		if cerr := sess.Close(); cerr != nil {
			fileLogger.Error("close session", "err", cerr)
		}
	}()
	updates, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	rollover, err := scheduler.NewEngine(cfg.SchedulerBuffer, scheduler.WithLocation(time.Local))
	if err != nil {
		return err
	}
	rollover.Start()
	defer rollover.Stop()
	fileLogger.Debug("rollover scheduled", "next", rollover.Next())

	m := update.NewModel(update.Config{
		Backend:       sess,
		Updates:       updates,
		Rollover:      rollover.C(),
		OpenRequests:  inst.Paths(),
		Logger:        fileLogger,
		ShowCompleted: cfg.ShowCompleted,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	if dropped := rollover.Dropped(); dropped > 0 {
		fileLogger.Warn("rollover events dropped", "count", dropped)
	}
	return nil
}
