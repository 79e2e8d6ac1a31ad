package migrate

import (
	"context"
	"fmt"

	"github.com/kwatalab/bsm/internal/legacy"
	"github.com/kwatalab/bsm/internal/report"
	"github.com/kwatalab/bsm/internal/transform"
	"github.com/kwatalab/bsm/internal/types"
)

// runUsersProducts is the joint first phase. Users are buffered and
// flushed in chunks; each user's embedded products are buffered separately
// and only transformed once their owner's id is resolvable, which a flush
// guarantees (fresh insert or adopted existing record).
func runUsersProducts(ctx context.Context, src legacy.Source, rc *RunContext) error {
	stream, err := src.Users(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = stream.Close(ctx) }()

	stats := report.PhaseStats{Name: "users+products"}
	var userBuf []types.Record
	// products of the buffered users, keyed off the same flush cycle
	var pendingOwners []string
	pendingProducts := make(map[string][]legacy.Product)

	flushCycle := func() error {
		fs, err := rc.flush(ctx, rc.Accounts, "users+products", userBuf, nil)
		if err != nil {
			return err
		}
		stats.Migrated += fs.migrated
		stats.Adopted += fs.adopted
		stats.Skipped += fs.skipped

		var prodBuf []types.Record
		for _, owner := range pendingOwners {
			for i := range pendingProducts[owner] {
				prod, skip := transform.Product(&pendingProducts[owner][i], owner, rc.Registry)
				if skip != nil {
					stats.Skipped++
					rc.Reporter.Skip("users+products", skip.Kind, skip.LegacyID, skip.Reason)
					continue
				}
				prodBuf = append(prodBuf, prod)
			}
		}
		ps, err := rc.flush(ctx, rc.Accounts, "users+products", prodBuf, nil)
		if err != nil {
			return err
		}
		stats.Migrated += ps.migrated
		stats.Adopted += ps.adopted
		stats.Skipped += ps.skipped

		userBuf = userBuf[:0]
		pendingOwners = pendingOwners[:0]
		pendingProducts = make(map[string][]legacy.Product)
		return nil
	}

	for stream.Next(ctx) {
		rec := stream.Record()
		stats.Processed = stream.Count()

		user, skip := transform.User(rec)
		if skip != nil {
			stats.Skipped++
			rc.Reporter.Skip("users+products", skip.Kind, skip.LegacyID, skip.Reason)
			continue
		}
		userBuf = append(userBuf, user)
		if len(rec.Products) > 0 {
			pendingOwners = append(pendingOwners, user.LegacyID)
			pendingProducts[user.LegacyID] = rec.Products
		}

		if len(userBuf) >= rc.Opts.BatchSize {
			if err := flushCycle(); err != nil {
				return err
			}
		}
		rc.Reporter.Progress("users+products", stats.Processed, stats.Migrated, stats.Skipped)
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("users cursor: %w", err)
	}
	if err := flushCycle(); err != nil {
		return err
	}

	rc.Reporter.PhaseDone(stats)
	return nil
}
