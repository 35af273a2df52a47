package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/neptune/internal/lifecycle"
	"github.com/sandeepkv93/neptune/internal/model"
	"github.com/sandeepkv93/neptune/internal/storage"
)

var nowFunc = time.Now

var (
	addDue   dueValue
	dueClear bool
	listJSON bool
	listAll  bool
)

var addCmd = &cobra.Command{
	Use:   "add <text>",
	Short: "Add a task to the top of the list",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Print the active and completed tasks",
	Args:    cobra.NoArgs,
	RunE:    runList,
}

var completeCmd = &cobra.Command{
	Use:     "complete <ref>",
	Aliases: []string{"done"},
	Short:   "Move an active task to the completed list",
	Args:    cobra.ExactArgs(1),
	RunE:    runComplete,
}

var skipCmd = &cobra.Command{
	Use:   "skip <ref>",
	Short: "Move an active task to the skipped list",
	Args:  cobra.ExactArgs(1),
	RunE:  runSkip,
}

var deleteCmd = &cobra.Command{
	Use:     "delete <ref>",
	Aliases: []string{"rm"},
	Short:   "Remove an active task",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

var deleteCompletedCmd = &cobra.Command{
	Use:   "delete-completed <ref>",
	Short: "Remove a task from the completed list",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteCompleted,
}

var editCmd = &cobra.Command{
	Use:   "edit <ref> <text>",
	Short: "Replace the text of an active task",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runEdit,
}

var describeCmd = &cobra.Command{
	Use:   "describe <ref> [description]",
	Short: "Set the description of an active task (empty clears it)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDescribe,
}

var dueCmd = &cobra.Command{
	Use:   "due <ref> <today|tomorrow|+N|YYYY-MM-DD|none>",
	Short: "Set or clear the due date of an active task",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runDue,
}

var moveCmd = &cobra.Command{
	Use:   "move <ref> <position>",
	Short: "Move an active task to a 1-based position",
	Args:  cobra.ExactArgs(2),
	RunE:  runMove,
}

func init() {
	addCmd.Flags().Var(&addDue, "due", "due date: today, tomorrow, +N, YYYY-MM-DD")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print the document as stored")
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "include skipped tasks")
	dueCmd.Flags().BoolVar(&dueClear, "clear", false, "clear the due date")
	rootCmd.AddCommand(addCmd, listCmd, completeCmd, skipCmd, deleteCmd, deleteCompletedCmd,
		editCmd, describeCmd, dueCmd, moveCmd)
}

// headless runs one engine operation against the document and saves it
// synchronously.
type headless struct {
	path   string
	store  *storage.FileStore
	doc    model.Document
	engine *lifecycle.Engine
}

func openStore(path string) *storage.FileStore {
	return storage.NewFileStore(path,
		storage.WithLogger(logger),
		storage.WithBackupCorrupt(cfg.BackupCorrupt),
		storage.WithStoreClock(nowFunc),
	)
}

// readDocument loads a document for display. A missing file is created
// empty; a malformed one is reported and left alone, without a backup copy.
func readDocument(path string) (model.Document, error) {
	store := openStore(path)
	doc, err := store.Read()
	switch {
	case err == nil:
		return doc, nil
	case errors.Is(err, fs.ErrNotExist):
		return store.Load(), nil
	default:
		return model.Document{}, failf(1, "%w", err)
	}
}

func openHeadless() (*headless, error) {
	path, err := documentPath()
	if err != nil {
		return nil, err
	}
	store := openStore(path)
	return &headless{
		path:   path,
		store:  store,
		doc:    store.Load(),
		engine: lifecycle.NewEngine(lifecycle.WithClock(nowFunc)),
	}, nil
}

func (h *headless) commit(ctx context.Context, change lifecycle.Change) error {
	if err := h.store.Write(h.doc); err != nil {
		return failf(1, "save %s: %w", h.path, err)
	}
	recordChange(ctx, h.path, change)
	return nil
}

func recordChange(ctx context.Context, path string, change lifecycle.Change) {
	if !cfg.JournalEnabled() {
		return
	}
	journal, err := storage.OpenJournal(cfg.JournalPath)
	if err != nil {
		logger.Warn("open journal", "path", cfg.JournalPath, "err", err)
		return
	}
	defer journal.Close()
	_, err = journal.Append(ctx, storage.Entry{
		Document: path,
		TaskID:   change.TaskID,
		Kind:     string(change.Kind),
		Text:     change.Text,
		At:       change.At,
	})
	if err != nil {
		logger.Warn("journal append", "kind", change.Kind, "err", err)
	}
}

// resolveRef finds a task by 1-based position or by id.
func resolveRef(tasks []model.Task, ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(tasks) {
		return n - 1, nil
	}
	if id, err := model.ParseID(ref); err == nil {
		if i := model.IndexOf(tasks, id); i >= 0 {
			return i, nil
		}
	}
	return -1, failf(2, "no task matches %q", ref)
}

func runAdd(cmd *cobra.Command, args []string) error {
	h, err := openHeadless()
	if err != nil {
		return err
	}
	task, change := h.engine.Add(&h.doc, strings.Join(args, " "))
	if addDue.due != nil {
		change, _ = h.engine.SetDueDate(&h.doc, task.ID, addDue.due)
		change.Kind = lifecycle.KindAdded
	}
	if err := h.commit(cmd.Context(), change); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", task.ID)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	path, err := documentPath()
	if err != nil {
		return err
	}
	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	if listJSON {
		raw, err := model.Encode(doc)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(raw))
		return nil
	}
	printList(cmd.OutOrStdout(), doc, nowFunc(), listOptions{Skipped: listAll})
	return nil
}

// activeOp resolves args[0] against the active list and applies op to it.
func activeOp(cmd *cobra.Command, ref string, verb string, op func(h *headless, task model.Task) (lifecycle.Change, bool)) error {
	h, err := openHeadless()
	if err != nil {
		return err
	}
	i, err := resolveRef(h.doc.Tasks, ref)
	if err != nil {
		return err
	}
	task := h.doc.Tasks[i]
	change, ok := op(h, task)
	if !ok {
		fmt.Fprintf(cmd.OutOrStdout(), "unchanged: %s\n", task.Text)
		return nil
	}
	if err := h.commit(cmd.Context(), change); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", verb, change.Text)
	return nil
}

func runComplete(cmd *cobra.Command, args []string) error {
	return activeOp(cmd, args[0], "completed", func(h *headless, task model.Task) (lifecycle.Change, bool) {
		return h.engine.Complete(&h.doc, task.ID)
	})
}

func runSkip(cmd *cobra.Command, args []string) error {
	return activeOp(cmd, args[0], "skipped", func(h *headless, task model.Task) (lifecycle.Change, bool) {
		return h.engine.Skip(&h.doc, task.ID)
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	return activeOp(cmd, args[0], "deleted", func(h *headless, task model.Task) (lifecycle.Change, bool) {
		return h.engine.DeleteActive(&h.doc, task.ID)
	})
}

func runEdit(cmd *cobra.Command, args []string) error {
	text := strings.Join(args[1:], " ")
	return activeOp(cmd, args[0], "edited", func(h *headless, task model.Task) (lifecycle.Change, bool) {
		return h.engine.UpdateText(&h.doc, task.ID, text)
	})
}

func runDescribe(cmd *cobra.Command, args []string) error {
	description := strings.Join(args[1:], " ")
	return activeOp(cmd, args[0], "described", func(h *headless, task model.Task) (lifecycle.Change, bool) {
		return h.engine.UpdateDescription(&h.doc, task.ID, description)
	})
}

func runDue(cmd *cobra.Command, args []string) error {
	var due *model.DueDate
	switch {
	case dueClear:
	case len(args) == 2:
		parsed, err := model.ParseDueInput(args[1], nowFunc())
		if err != nil {
			return failf(2, "%w", err)
		}
		due = parsed
	default:
		return failf(2, "due needs a date or --clear")
	}
	return activeOp(cmd, args[0], "due", func(h *headless, task model.Task) (lifecycle.Change, bool) {
		return h.engine.SetDueDate(&h.doc, task.ID, due)
	})
}

func runMove(cmd *cobra.Command, args []string) error {
	pos, err := strconv.Atoi(args[1])
	if err != nil || pos < 1 {
		return failf(2, "position must be a number starting at 1")
	}
	return activeOp(cmd, args[0], "moved", func(h *headless, task model.Task) (lifecycle.Change, bool) {
		if pos > len(h.doc.Tasks) {
			pos = len(h.doc.Tasks)
		}
		return h.engine.Reorder(&h.doc, model.IndexOf(h.doc.Tasks, task.ID), pos-1)
	})
}

func runDeleteCompleted(cmd *cobra.Command, args []string) error {
	h, err := openHeadless()
	if err != nil {
		return err
	}
	i, err := resolveRef(h.doc.Completed, args[0])
	if err != nil {
		return err
	}
	change, ok := h.engine.DeleteCompleted(&h.doc, h.doc.Completed[i].ID)
	if !ok {
		return nil
	}
	if err := h.commit(cmd.Context(), change); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed: %s\n", change.Text)
	return nil
}
