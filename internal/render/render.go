// Package render draws orchestration states, analysis results and stored
// reviews for a terminal. It only reads what it is given.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/kiranshivaraju/codereview/internal/session"
	"github.com/kiranshivaraju/codereview/pkg/models"
	"github.com/muesli/termenv"
)

// BusyMessage is shown while an analysis request is in flight.
const BusyMessage = "Analyzing..."

// IdleMessage is shown before any analysis has been started.
const IdleMessage = "Select a source file and run an analysis."

// Options controls terminal rendering.
type Options struct {
	// NoColor disables ANSI styling and syntax highlighting.
	NoColor bool
	// ShowSources prints the original and refactored sources after the findings.
	ShowSources bool
	// Language is the chroma lexer used for sources. Defaults to "java".
	Language string
}

// Renderer writes styled text to w.
type Renderer struct {
	w    io.Writer
	opts Options

	heading lipgloss.Style
	label   lipgloss.Style
	faint   lipgloss.Style
	good    lipgloss.Style
	fair    lipgloss.Style
	poor    lipgloss.Style
	failure lipgloss.Style
	line    lipgloss.Style
}

// New creates a Renderer for w.
func New(w io.Writer, opts Options) *Renderer {
	if opts.Language == "" {
		opts.Language = "java"
	}

	profile := termenv.ANSI256
	if opts.NoColor {
		profile = termenv.Ascii
	}
	// Force the profile so detection on w cannot override the caller's choice.
	lip := lipgloss.NewRenderer(w, termenv.WithProfile(profile))
	lip.SetColorProfile(profile)

	return &Renderer{
		w:       w,
		opts:    opts,
		heading: lip.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		label:   lip.NewStyle().Bold(true),
		faint:   lip.NewStyle().Foreground(lipgloss.Color("245")),
		good:    lip.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		fair:    lip.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		poor:    lip.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		failure: lip.NewStyle().Foreground(lipgloss.Color("196")),
		line:    lip.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// State renders one orchestration state.
func (r *Renderer) State(s session.State) error {
	switch s.Phase {
	case session.PhaseIdle:
		return r.printf("%s\n", r.faint.Render(IdleMessage))
	case session.PhaseBusy:
		return r.printf("%s\n", r.faint.Render(BusyMessage))
	case session.PhaseFailed:
		return r.printf("%s %s\n", r.failure.Render("Analysis failed:"), s.Reason)
	case session.PhaseSucceeded:
		result, ok := s.Succeeded()
		if !ok {
			return nil
		}
		return r.Result(result)
	default:
		return fmt.Errorf("render: unknown phase %d", s.Phase)
	}
}

// Result renders the findings of one analysis.
func (r *Renderer) Result(res models.AnalysisResult) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", r.heading.Render(res.FileName))
	if res.ReviewID != "" {
		fmt.Fprintf(&b, "%s %s\n", r.label.Render("Review:"), res.ReviewID)
	}
	fmt.Fprintf(&b, "%s %s\n", r.label.Render("Original Score:"), r.score(res.OriginalScore))
	if res.HasRefactoring() {
		fmt.Fprintf(&b, "%s %s\n", r.label.Render("Refactored Score:"), r.score(*res.RefactoredScore))
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "%s\n", r.label.Render("Issues"))
	if len(res.Issues) == 0 {
		fmt.Fprintf(&b, "  %s\n", r.faint.Render("No issues found."))
	}
	for _, issue := range res.Issues {
		fmt.Fprintf(&b, "  %s %s\n", r.line.Render(fmt.Sprintf("Line %d:", issue.Line)), issue.Message)
	}

	if len(res.AISuggestions) > 0 {
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s\n", r.label.Render("Suggestions"))
		for _, s := range res.AISuggestions {
			fmt.Fprintf(&b, "  %s\n", s)
		}
	}

	if err := r.printf("%s", b.String()); err != nil {
		return err
	}

	if !r.opts.ShowSources {
		return nil
	}
	if err := r.source("Original Source", res.OriginalSource); err != nil {
		return err
	}
	if res.HasRefactoring() {
		return r.source("Refactored Source", *res.RefactoredSource)
	}
	return nil
}

// Review renders a stored review with its provenance.
func (r *Renderer) Review(review *models.Review) error {
	if err := r.printf("%s %s  %s %s/%s  %s %s\n\n",
		r.label.Render("Stored:"), review.CreatedAt.Format("2006-01-02 15:04:05"),
		r.label.Render("Provider:"), review.Provider, review.Model,
		r.label.Render("Hash:"), shortHash(review.SourceHash)); err != nil {
		return err
	}
	res := review.Result
	if res.ReviewID == "" {
		res.ReviewID = review.ID.String()
	}
	return r.Result(res)
}

// Reviews renders one page of review summaries as a table.
func (r *Renderer) Reviews(reviews []models.ReviewSummary, total int, hasNext bool) error {
	if len(reviews) == 0 {
		return r.printf("%s\n", r.faint.Render("No reviews found."))
	}

	rows := [][]string{{"ID", "FILE", "SCORE", "REFACTORED", "ISSUES", "PROVIDER", "CREATED"}}
	for _, s := range reviews {
		refactored := "-"
		if s.RefactoredScore != nil {
			refactored = strconv.Itoa(*s.RefactoredScore)
		}
		rows = append(rows, []string{
			s.ID.String(),
			s.FileName,
			strconv.Itoa(s.OriginalScore),
			refactored,
			strconv.Itoa(s.IssueCount),
			s.Provider,
			s.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	for i, row := range rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = cell + strings.Repeat(" ", widths[j]-lipgloss.Width(cell))
		}
		text := strings.TrimRight(strings.Join(cells, "  "), " ")
		if i == 0 {
			text = r.label.Render(text)
		}
		b.WriteString(text + "\n")
	}

	footer := fmt.Sprintf("%d of %d reviews", len(reviews), total)
	if hasNext {
		footer += " (more available)"
	}
	b.WriteString(r.faint.Render(footer) + "\n")
	return r.printf("%s", b.String())
}

func (r *Renderer) source(title, src string) error {
	if err := r.printf("\n%s\n", r.label.Render(title)); err != nil {
		return err
	}
	if r.opts.NoColor {
		return r.printf("%s\n", strings.TrimRight(src, "\n"))
	}

	var b strings.Builder
	if err := quick.Highlight(&b, src, r.opts.Language, "terminal256", "monokai"); err != nil {
		return r.printf("%s\n", strings.TrimRight(src, "\n"))
	}
	return r.printf("%s\n", strings.TrimRight(b.String(), "\n"))
}

// score colors a 0..100 score by band.
func (r *Renderer) score(n int) string {
	text := strconv.Itoa(n)
	switch {
	case n >= 80:
		return r.good.Render(text)
	case n >= 50:
		return r.fair.Render(text)
	default:
		return r.poor.Render(text)
	}
}

func (r *Renderer) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(r.w, format, args...)
	return err
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
