// Package main implements the neptune to-do list editor: a terminal UI over a
// single .todo file plus headless subcommands for scripting.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sandeepkv93/neptune/internal/config"
	"github.com/sandeepkv93/neptune/internal/launcher"
	"github.com/sandeepkv93/neptune/internal/logging"
)

var version = "dev"

var (
	cfg      config.RuntimeConfig
	logger   *log.Logger
	fileFlag string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr interface{ ExitCode() int }
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "neptune [file.todo]",
	Short:             "Neptune - a to-do list kept in one JSON file",
	Args:              cobra.ArbitraryArgs,
	SilenceUsage:      true,
	PersistentPreRunE: loadRuntime,
	RunE:              runRoot,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&fileFlag, "file", "f", "", "document to operate on (default from config)")
}

func loadRuntime(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded
	logger = logging.New(cmd.ErrOrStderr(), logging.OptionsFromConfig(cfg.LogLevel, cfg.LogFormat))
	return nil
}

// documentPath is the --file flag when given, else the configured default.
func documentPath() (string, error) {
	if strings.TrimSpace(fileFlag) != "" {
		return launcher.ResolvePath([]string{fileFlag}, "")
	}
	return launcher.ResolvePath(nil, cfg.DefaultFile)
}

func runRoot(cmd *cobra.Command, args []string) error {
	var (
		path string
		err  error
	)
	if len(args) == 0 {
		path, err = documentPath()
	} else {
		path, err = launcher.ResolvePath(args, cfg.DefaultFile)
	}
	if err != nil {
		return err
	}

	if !stdoutIsTerminal() {
		doc, err := readDocument(path)
		if err != nil {
			return err
		}
		printList(cmd.OutOrStdout(), doc, nowFunc(), listOptions{})
		return nil
	}
	return runTUI(cmd, path)
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }
func (e *exitError) ExitCode() int { return e.code }

func failf(code int, format string, args ...any) error {
	return &exitError{code: code, err: fmt.Errorf(format, args...)}
}
