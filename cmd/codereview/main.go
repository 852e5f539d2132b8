// Package main is the codereview command-line client.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiranshivaraju/codereview/internal/config"
	"github.com/kiranshivaraju/codereview/internal/render"
	"github.com/kiranshivaraju/codereview/internal/reviewclient"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

// app carries the resolved client settings shared by every subcommand.
type app struct {
	server  string
	apiKey  string
	timeout time.Duration
	verbose bool
	noColor bool

	client reviewclient.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "codereview",
		Short: "Submit source files for review and save the refactored result",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.Version = version

	f := root.PersistentFlags()
	f.StringVar(&a.server, "server", "", "Analysis service URL (env CODEREVIEW_SERVER_URL)")
	f.StringVar(&a.apiKey, "api-key", "", "API key (env CODEREVIEW_API_KEY)")
	f.DurationVar(&a.timeout, "timeout", 0, "Request timeout (env CODEREVIEW_TIMEOUT)")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	f.BoolVar(&a.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newReviewCmd(a),
		newShowCmd(a),
		newHistoryCmd(a),
		newHealthCmd(a),
	)
	return root
}

// setup merges flags over the environment and builds the service client.
func (a *app) setup(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

	cfg, err := config.LoadClient()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.ServerURL = a.server
	}
	if flags.Changed("api-key") {
		cfg.APIKey = a.apiKey
	}
	if flags.Changed("timeout") {
		cfg.Timeout = a.timeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.server, a.apiKey, a.timeout = cfg.ServerURL, cfg.APIKey, cfg.Timeout
	a.client = reviewclient.NewHTTPClient(cfg.ServerURL, cfg.APIKey, cfg.Timeout)
	slog.Debug("client configured", "server", cfg.ServerURL, "timeout", cfg.Timeout, "api_key_set", cfg.APIKey != "")
	return nil
}

func (a *app) renderer(w io.Writer, showSources bool) *render.Renderer {
	return render.New(w, render.Options{NoColor: a.noColor, ShowSources: showSources})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
