package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/codereview/internal/session"
	"github.com/spf13/cobra"
)

func newShowCmd(a *app) *cobra.Command {
	var (
		ex          exportFlags
		showSources bool
	)
	cmd := &cobra.Command{
		Use:   "show REVIEW_ID",
		Short: "Show a stored review",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid review id %q: %w", args[0], err)
			}

			review, err := a.client.GetReview(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("get review: %w", err)
			}

			out := cmd.OutOrStdout()
			if err := a.renderer(out, showSources).Review(review); err != nil {
				return err
			}
			return exportSources(cmd.Context(), out, session.Static(session.Succeeded(review.Result)), ex)
		},
	}
	ex.register(cmd)
	cmd.Flags().BoolVar(&showSources, "show-sources", false, "Print the original and refactored sources")
	return cmd
}
