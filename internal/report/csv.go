package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// WriteCSV emits the run report: one row per phase, then one row per
// skipped record. The file is for ad-hoc analyses, not consumed by the
// engine itself.
func (r *Reporter) WriteCSV(path string) error {
	f, err := os.Create(path) // #nosec G304 - path is an operator-supplied flag
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"row", "phase", "kind", "legacy_id", "processed", "migrated", "skipped", "reason"}); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	for _, p := range r.phases {
		rec := []string{"phase", p.Name, "", "",
			strconv.Itoa(p.Processed), strconv.Itoa(p.Migrated), strconv.Itoa(p.Skipped), ""}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}
	for _, s := range r.skips {
		rec := []string{"skip", s.Phase, string(s.Kind), s.LegacyID, "", "", "", s.Reason}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write report row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}
	return nil
}
