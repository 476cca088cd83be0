package main

import (
	"fmt"
	"io"

	"github.com/liamcoop/ui5helper/internal/prompt"
	"github.com/liamcoop/ui5helper/scaffold"
)

// printResults reports every touched file; skipped files are shown in red
func printResults(w io.Writer, results []scaffold.FileResult) {
	for _, r := range results {
		switch r.Status {
		case scaffold.StatusSkipped:
			fmt.Fprintln(w, prompt.Red(fmt.Sprintf("already exists, skipped -> '%s'", r.Path)))
		case scaffold.StatusUpdated:
			fmt.Fprintln(w, prompt.Green(fmt.Sprintf("updated -> '%s'", r.Path)))
		default:
			fmt.Fprintln(w, prompt.Green(fmt.Sprintf("added successfully -> '%s'", r.Path)))
		}
	}
}
