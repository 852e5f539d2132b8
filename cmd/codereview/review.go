package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/kiranshivaraju/codereview/internal/export"
	"github.com/kiranshivaraju/codereview/internal/session"
	"github.com/spf13/cobra"
)

// exportFlags select which sources are saved after a successful review.
type exportFlags struct {
	dir            string
	saveOriginal   bool
	saveRefactored bool
}

func (f *exportFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.dir, "out", ".", "Directory for saved sources")
	fl.BoolVar(&f.saveOriginal, "save-original", false, "Save the submitted source")
	fl.BoolVar(&f.saveRefactored, "save-refactored", false, "Save the refactored source")
}

func newReviewCmd(a *app) *cobra.Command {
	var (
		ex          exportFlags
		showSources bool
	)
	cmd := &cobra.Command{
		Use:   "review FILE",
		Short: "Analyze a source file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			holder := session.NewHolder()
			if len(args) == 1 {
				artifact, err := session.NewArtifactFromFile(args[0])
				if err != nil {
					return err
				}
				holder.Set(artifact)
			}
			return runReview(cmd.Context(), cmd.OutOrStdout(), a, holder, ex, showSources)
		},
	}
	ex.register(cmd)
	cmd.Flags().BoolVar(&showSources, "show-sources", false, "Print the original and refactored sources")
	return cmd
}

func runReview(ctx context.Context, out io.Writer, a *app, holder *session.Holder, ex exportFlags, showSources bool) error {
	r := a.renderer(out, showSources)

	orch := session.NewOrchestrator(holder, a.client, session.WithObserver(func(s session.State) {
		if s.IsBusy() {
			if err := r.State(s); err != nil {
				slog.Debug("failed to render busy notice", "error", err)
			}
		}
	}))

	pending, err := orch.RunAnalysis(ctx)
	if err != nil {
		return err
	}
	waitErr := pending.Wait(ctx)

	state := orch.State()
	if err := r.State(state); err != nil {
		return err
	}
	if waitErr != nil {
		return waitErr
	}

	return exportSources(ctx, out, orch, ex)
}

// exportSources saves the requested sources of a succeeded state.
func exportSources(ctx context.Context, out io.Writer, source session.StateSource, ex exportFlags) error {
	if !ex.saveOriginal && !ex.saveRefactored {
		return nil
	}
	sink := export.NewFileSink(ex.dir)
	exporter := session.NewExporter(source, sink)
	state := source.State()

	if ex.saveOriginal {
		saved, err := exporter.ExportOriginal(ctx)
		if err != nil {
			return err
		}
		if d, ok := session.OriginalDownload(state); saved && ok {
			reportSaved(out, sink, "original", d.Name)
		}
	}

	if ex.saveRefactored {
		saved, err := exporter.ExportRefactored(ctx)
		if err != nil {
			return err
		}
		if !saved {
			fmt.Fprintln(out, "No refactored source to save.")
		} else if d, ok := session.RefactoredDownload(state); ok {
			reportSaved(out, sink, "refactored", d.Name)
		}
	}
	return nil
}

func reportSaved(out io.Writer, sink *export.FileSink, what, name string) {
	path, err := sink.Path(name)
	if err != nil {
		path = name
	}
	fmt.Fprintf(out, "Saved %s source to %s\n", what, path)
}
