package migrate

import (
	"context"
	"fmt"

	"github.com/kwatalab/bsm/internal/store"
	"github.com/kwatalab/bsm/internal/types"
)

// flushStats tallies one flush for the calling phase.
type flushStats struct {
	migrated int
	adopted  int
	skipped  int
}

// flush writes recs to target in fixed-size chunks in "continue past
// per-item failure" mode. Committed records are registered in input order
// before failures are processed; uniqueness conflicts go to the registry's
// conflict resolution and everything else becomes a logged skip. Only a
// connection-level store error is returned, and it aborts the run.
//
// onCommit, when non-nil, is invoked for each record the target committed,
// after its identity mapping is registered.
func (rc *RunContext) flush(ctx context.Context, target store.Target, phase string, recs []types.Record, onCommit func(types.Record)) (flushStats, error) {
	var stats flushStats
	size := rc.Opts.BatchSize

	for start := 0; start < len(recs); start += size {
		end := start + size
		if end > len(recs) {
			end = len(recs)
		}
		chunk := recs[start:end]

		res, err := target.BulkInsert(ctx, chunk)
		if err != nil {
			return stats, fmt.Errorf("%s: bulk insert: %w", phase, err)
		}

		// Committed first, in input order, so later conflict resolution and
		// dependent phases see every fresh mapping.
		for _, ins := range res.Committed {
			rec := chunk[ins.Index]
			rc.Registry.Register(rec.Kind(), rec.LegacyRef(), ins.ID)
			stats.migrated++
			if onCommit != nil {
				onCommit(rec)
			}
		}

		for _, c := range res.Conflicts {
			rec := chunk[c.Index]
			id, resolved, err := rc.Registry.ResolveConflict(ctx, target, rec, c)
			if err != nil {
				return stats, fmt.Errorf("%s: %w", phase, err)
			}
			if resolved {
				rec.SetRecordID(id)
				stats.adopted++
				continue
			}
			stats.skipped++
			rc.Reporter.Skip(phase, rec.Kind(), rec.LegacyRef(),
				fmt.Sprintf("duplicate %s with no resolvable existing record", c.Field))
		}

		for _, f := range res.Failures {
			rec := chunk[f.Index]
			stats.skipped++
			rc.Reporter.Skip(phase, rec.Kind(), rec.LegacyRef(), f.Reason)
		}
	}

	return stats, nil
}
