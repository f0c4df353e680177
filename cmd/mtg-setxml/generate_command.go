package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate (all | SET...)",
		Short: "Generate the documents of the given sets, or of every set",
		Example: `  mtg-setxml generate all
  mtg-setxml generate LEA LRW`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				if len(args) == 1 && strings.EqualFold(args[0], "all") {
					return checkErrs(a.pipeline.RunAll(cmd.Context()))
				}
				return checkErrs(a.pipeline.RunSets(cmd.Context(), args))
			})
		},
	}
}

func newUpdateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Regenerate the documents that are missing or out of date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				return checkErrs(a.pipeline.RunStale(cmd.Context()))
			})
		},
	}
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan SET...",
		Short: "List the cards of the given sets and cache their pages without generating documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				return checkErrs(a.pipeline.Prefetch(cmd.Context(), args))
			})
		},
	}
}
