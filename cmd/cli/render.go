package main

import (
	"fmt"
	"io"
	"time"

	"github.com/shaibs3/studyhub/internal/db_model"
	"github.com/shaibs3/studyhub/internal/view"
)

func renderCatalog(w io.Writer, c view.Catalog) {
	pinned, viewed, available := c.Counts()
	renderBucket(w, "Pinned", pinned, c.Pinned)
	renderBucket(w, "Viewed", viewed, c.Viewed)
	renderBucket(w, "Available", available, c.Available)
}

func renderBucket(w io.Writer, title string, count int, resources []db_model.Resource) {
	fmt.Fprintf(w, "%s (%d)\n", title, count)
	if count == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, r := range resources {
		fmt.Fprintf(w, "  #%d %s <%s>", r.ID, r.Title, r.URL)
		if r.Category != nil {
			fmt.Fprintf(w, " [%s]", *r.Category)
		}
		fmt.Fprintln(w)
		if r.Description != nil {
			fmt.Fprintf(w, "      %s\n", *r.Description)
		}
	}
}

func renderTasks(w io.Writer, tasks []db_model.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "no tasks")
		return
	}
	for _, t := range tasks {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		fmt.Fprintf(w, "%s #%d %s", box, t.ID, t.Name)
		if t.Course != nil {
			fmt.Fprintf(w, " (%s)", *t.Course)
		}
		if t.DueDate != nil {
			fmt.Fprintf(w, " due %s", t.DueDate)
		}
		fmt.Fprintln(w)
		if p, ok := view.TaskProgress(t, now); ok && !t.Completed {
			fmt.Fprintf(w, "    %s\n", view.Bar(p, 20))
		}
	}
}
