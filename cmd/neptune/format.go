package main

import (
	"fmt"
	"io"
	"time"

	"github.com/sandeepkv93/neptune/internal/model"
	"github.com/sandeepkv93/neptune/internal/views"
)

type listOptions struct {
	Skipped bool
}

// printList writes the plain-text listing used when stdout is not a terminal.
func printList(w io.Writer, doc model.Document, now time.Time, opts listOptions) {
	fmt.Fprintf(w, "Active (%d)\n", len(doc.Tasks))
	for i, task := range doc.Tasks {
		fmt.Fprintf(w, "  %d. %s", i+1, task.Text)
		if task.DueDate != nil {
			fmt.Fprintf(w, "  due %s", task.DueDate)
			if task.IsOverdue(now) {
				fmt.Fprintf(w, " %s", views.OverdueBadge)
			}
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "Completed (%d)\n", len(doc.Completed))
	for _, task := range doc.Completed {
		fmt.Fprintf(w, "  - %s\n", task.Text)
	}
	if opts.Skipped {
		fmt.Fprintf(w, "Skipped (%d)\n", len(doc.Skipped))
		for _, task := range doc.Skipped {
			fmt.Fprintf(w, "  - %s\n", task.Text)
		}
	}
}
