package main

import (
	"fmt"

	"github.com/kiranshivaraju/codereview/internal/reviewclient"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var req reviewclient.ListReviewsRequest
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored reviews, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			page, err := a.client.ListReviews(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("list reviews: %w", err)
			}
			return a.renderer(cmd.OutOrStdout(), false).Reviews(page.Reviews, page.Total, page.HasNext)
		},
	}
	f := cmd.Flags()
	f.StringVar(&req.FileName, "file-name", "", "Only reviews of this file name")
	f.IntVar(&req.Page, "page", 1, "Page number")
	f.IntVar(&req.Limit, "limit", 20, "Reviews per page (max 100)")
	return cmd
}
