package migrate

import (
	"context"
	"fmt"

	"github.com/kwatalab/bsm/internal/legacy"
	"github.com/kwatalab/bsm/internal/report"
	"github.com/kwatalab/bsm/internal/store"
	"github.com/kwatalab/bsm/internal/transform"
	"github.com/kwatalab/bsm/internal/types"
)

// streamPhase drains one legacy collection through a transformer into a
// target store. The shape of the transactions, subscriptions and referrals
// phases is identical; only the stream, mapper and target differ.
func streamPhase[T any](
	ctx context.Context,
	rc *RunContext,
	name string,
	open func(context.Context) (legacy.Stream[T], error),
	target store.Target,
	mapRec func(T) (types.Record, *transform.Skip),
) error {
	stream, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = stream.Close(ctx) }()

	stats := report.PhaseStats{Name: name}
	var buf []types.Record

	flushBuf := func() error {
		fs, err := rc.flush(ctx, target, name, buf, nil)
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
		stats.Processed = stream.Count()
		rec, skip := mapRec(stream.Record())
		if skip != nil {
			stats.Skipped++
			rc.Reporter.Skip(name, skip.Kind, skip.LegacyID, skip.Reason)
			continue
		}
		buf = append(buf, rec)
		if len(buf) >= rc.Opts.BatchSize {
			if err := flushBuf(); err != nil {
				return err
			}
		}
		rc.Reporter.Progress(name, stats.Processed, stats.Migrated, stats.Skipped)
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("%s cursor: %w", name, err)
	}
	if err := flushBuf(); err != nil {
		return err
	}

	rc.Reporter.PhaseDone(stats)
	return nil
}

func runTransactions(ctx context.Context, src legacy.Source, rc *RunContext) error {
	return streamPhase(ctx, rc, "transactions", src.Transactions, rc.Billing,
		func(rec *legacy.Transaction) (types.Record, *transform.Skip) {
			tx, skip := transform.Transaction(rec, rc.Registry)
			if skip != nil {
				return nil, skip
			}
			return tx, nil
		})
}

func runSubscriptions(ctx context.Context, src legacy.Source, rc *RunContext) error {
	return streamPhase(ctx, rc, "subscriptions", src.Subscriptions, rc.Billing,
		func(rec *legacy.Subscription) (types.Record, *transform.Skip) {
			sub, skip := transform.Subscription(rec, rc.Registry)
			if skip != nil {
				return nil, skip
			}
			return sub, nil
		})
}

func runReferrals(ctx context.Context, src legacy.Source, rc *RunContext) error {
	return streamPhase(ctx, rc, "referrals", src.Referrals, rc.Partners,
		func(rec *legacy.Referral) (types.Record, *transform.Skip) {
			ref, skip := transform.Referral(rec, rc.Registry)
			if skip != nil {
				return nil, skip
			}
			return ref, nil
		})
}
