package migrate

import (
	"context"
	"fmt"
	"sort"

	"github.com/kwatalab/bsm/internal/legacy"
	"github.com/kwatalab/bsm/internal/report"
	"github.com/kwatalab/bsm/internal/transform"
	"github.com/kwatalab/bsm/internal/types"
)

// runRatings re-reads the users collection (ratings are embedded in
// products) with a fresh cursor and migrates each rating whose rater and
// product both resolved. Committed ratings feed the per-product tallies
// the aggregate phase persists.
func runRatings(ctx context.Context, src legacy.Source, rc *RunContext) error {
	stream, err := src.Users(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = stream.Close(ctx) }()

	stats := report.PhaseStats{Name: "ratings"}
	var buf []types.Record

	onCommit := func(rec types.Record) {
		rating := rec.(*types.Rating)
		tally := rc.ratingAgg[rating.ProductID]
		if tally == nil {
			tally = &ratingTally{}
			rc.ratingAgg[rating.ProductID] = tally
		}
		tally.count++
		tally.sum += rating.Stars
	}

	flushBuf := func() error {
		fs, err := rc.flush(ctx, rc.Accounts, "ratings", buf, onCommit)
		if err != nil {
			return err
		}
		stats.Migrated += fs.migrated
		stats.Adopted += fs.adopted
		stats.Skipped += fs.skipped
		buf = buf[:0]
		return nil
	}

	for stream.Next(ctx) {
		user := stream.Record()
		for pi := range user.Products {
			product := &user.Products[pi]
			for ri := range product.Ratings {
				stats.Processed++
				rating, skip := transform.Rating(&product.Ratings[ri], product.ID.Hex(), rc.Registry)
				if skip != nil {
					stats.Skipped++
					rc.Reporter.Skip("ratings", skip.Kind, skip.LegacyID, skip.Reason)
					continue
				}
				buf = append(buf, rating)
				if len(buf) >= rc.Opts.BatchSize {
					if err := flushBuf(); err != nil {
						return err
					}
				}
				rc.Reporter.Progress("ratings", stats.Processed, stats.Migrated, stats.Skipped)
			}
		}
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("users cursor: %w", err)
	}
	if err := flushBuf(); err != nil {
		return err
	}

	rc.Reporter.PhaseDone(stats)
	return nil
}

// runRatingAggregates recomputes and persists each rated product's count
// and average from the ratings that actually migrated. Legacy aggregates
// are never consulted.
func runRatingAggregates(ctx context.Context, src legacy.Source, rc *RunContext) error {
	stats := report.PhaseStats{Name: "rating aggregates"}

	productIDs := make([]string, 0, len(rc.ratingAgg))
	for id := range rc.ratingAgg {
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	for _, id := range productIDs {
		tally := rc.ratingAgg[id]
		stats.Processed++
		avg := float64(tally.sum) / float64(tally.count)
		if err := rc.Accounts.UpdateProductRatingSummary(ctx, id, tally.count, avg); err != nil {
			return err
		}
		stats.Migrated++
	}

	rc.Reporter.PhaseDone(stats)
	return nil
}
