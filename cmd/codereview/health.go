package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the analysis service is reachable and healthy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client.Health(cmd.Context()); err != nil {
				return fmt.Errorf("service unhealthy: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is healthy\n", a.server)
			return nil
		},
	}
}
