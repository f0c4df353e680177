package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jeandeaual/mtg-setxml/setdoc"
	"github.com/jeandeaual/mtg-setxml/sets"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var staleOnly bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the schema version of every generated document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				results := make([]setdoc.Result, 0, len(a.catalog.Codes()))
				for _, code := range a.catalog.Codes() {
					result := a.scanner.Inspect(code)
					if staleOnly && !result.Status.NeedsUpdate() {
						continue
					}
					results = append(results, result)
				}
				renderStatus(cmd.Context(), cmd.OutOrStdout(), a.catalog, results)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&staleOnly, "stale", false, "Only list the documents that need to be regenerated")
	return cmd
}

func renderStatus(ctx context.Context, out io.Writer, catalog sets.Catalog, results []setdoc.Result) {
	if len(results) == 0 {
		fmt.Fprintln(out, "No sets to display")
		return
	}

	counts := make(map[setdoc.Status]int)
	rows := make([][]string, 0, len(results))

	for _, result := range results {
		counts[result.Status]++

		var name string
		if info, err := catalog.Lookup(ctx, result.Code); err == nil {
			name = info.Name
		}

		version := result.Version
		if len(version) == 0 {
			version = "-"
		}

		rows = append(rows, []string{result.Code, name, version, result.Status.String()})
	}

	fmt.Fprintln(out, renderTable(
		[]string{"Code", "Name", "Version", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	))

	var outdated int
	for status, count := range counts {
		if status.NeedsUpdate() {
			outdated += count
		}
	}
	fmt.Fprintf(out, "%d sets, %d up to date, %d to regenerate (schema version %s)\n",
		len(results), counts[setdoc.StatusCurrent], outdated, setdoc.SchemaVersion)
}
