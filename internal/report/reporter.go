// Package report renders migration progress and the final run summary, and
// exports a CSV of the run for ad-hoc analyses.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"

	"github.com/kwatalab/bsm/internal/types"
)

// progressEvery controls how often per-phase progress lines are printed.
const progressEvery = 500

// PhaseStats is one completed phase's tallies.
type PhaseStats struct {
	Name      string
	Processed int
	Migrated  int
	Skipped   int
	Adopted   int
}

// SkipRow is one skipped record, kept for the CSV export.
type SkipRow struct {
	Phase    string
	Kind     types.Kind
	LegacyID string
	Reason   string
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// Reporter accumulates phase results and skip rows. It is owned by the run
// context; the run is single-threaded so there is no locking.
type Reporter struct {
	out    io.Writer
	errOut io.Writer
	phases []PhaseStats
	skips  []SkipRow
}

// New builds a Reporter writing progress to out and warnings to errOut.
func New(out, errOut io.Writer) *Reporter {
	return &Reporter{out: out, errOut: errOut}
}

// Progress prints a periodic progress line for a phase.
func (r *Reporter) Progress(phase string, processed, migrated, skipped int) {
	if processed%progressEvery != 0 {
		return
	}
	fmt.Fprintf(r.out, "%s: processed %d, migrated %d, skipped %d\n", phase, processed, migrated, skipped)
}

// Skip logs one skipped record with enough context to re-investigate.
func (r *Reporter) Skip(phase string, kind types.Kind, legacyID, reason string) {
	r.skips = append(r.skips, SkipRow{Phase: phase, Kind: kind, LegacyID: legacyID, Reason: reason})
	fmt.Fprintf(r.errOut, "%s skip %s %s: %s\n", warnStyle.Render(phase), kind, legacyID, reason)
}

// PhaseDone records a completed phase and prints its line.
func (r *Reporter) PhaseDone(stats PhaseStats) {
	r.phases = append(r.phases, stats)
	line := fmt.Sprintf("%s done: processed %d, migrated %d, skipped %d",
		stats.Name, stats.Processed, stats.Migrated, stats.Skipped)
	if stats.Adopted > 0 {
		line += fmt.Sprintf(" (%d adopted existing records)", stats.Adopted)
	}
	fmt.Fprintln(r.out, line)
}

// Phases returns the recorded phase stats in completion order.
func (r *Reporter) Phases() []PhaseStats { return r.phases }

// Skips returns every skipped record recorded so far.
func (r *Reporter) Skips() []SkipRow { return r.skips }

// Summary prints the final run summary: per-phase tallies and per-kind
// identity mapping counts.
func (r *Reporter) Summary(mappings map[types.Kind]int) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, headerStyle.Render("Migration summary"))
	for _, p := range r.phases {
		fmt.Fprintf(r.out, "  %-22s processed %6d  migrated %6d  skipped %5d\n",
			p.Name, p.Processed, p.Migrated, p.Skipped)
	}

	kinds := make([]string, 0, len(mappings))
	for k := range mappings {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	fmt.Fprintln(r.out, headerStyle.Render("Identity mappings"))
	for _, k := range kinds {
		fmt.Fprintf(r.out, "  %-22s %d\n", k, mappings[types.Kind(k)])
	}
	if len(r.skips) > 0 {
		fmt.Fprintln(r.out, dimStyle.Render(fmt.Sprintf("%d records skipped; re-run after fixing data quality to pick them up", len(r.skips))))
	}
}
