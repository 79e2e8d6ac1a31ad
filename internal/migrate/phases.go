package migrate

import (
	"context"
	"fmt"

	"github.com/kwatalab/bsm/internal/legacy"
	"github.com/kwatalab/bsm/internal/types"
)

// phase is one ordered stage of the pipeline. needs lists the registry
// kinds it reads, provides the kinds it populates; Run asserts each
// phase's needs were provided by an earlier phase before starting it.
type phase struct {
	name     string
	needs    []types.Kind
	provides []types.Kind
	run      func(ctx context.Context, src legacy.Source, rc *RunContext) error
}

func phases() []phase {
	return []phase{
		{
			name:     "users+products",
			provides: []types.Kind{types.KindUser, types.KindProduct},
			run:      runUsersProducts,
		},
		{
			name:     "ratings",
			needs:    []types.Kind{types.KindUser, types.KindProduct},
			provides: []types.Kind{types.KindRating},
			run:      runRatings,
		},
		{
			name:  "rating aggregates",
			needs: []types.Kind{types.KindRating},
			run:   runRatingAggregates,
		},
		{
			name:     "transactions",
			needs:    []types.Kind{types.KindUser},
			provides: []types.Kind{types.KindTransaction},
			run:      runTransactions,
		},
		{
			name:     "subscriptions",
			needs:    []types.Kind{types.KindUser},
			provides: []types.Kind{types.KindSubscription},
			run:      runSubscriptions,
		},
		{
			name:     "referrals",
			needs:    []types.Kind{types.KindUser},
			provides: []types.Kind{types.KindReferral},
			run:      runReferrals,
		},
		{
			name:     "partners",
			needs:    []types.Kind{types.KindUser},
			provides: []types.Kind{types.KindPartner, types.KindPartnerTransaction},
			run:      runPartners,
		},
	}
}

// Run executes every phase in dependency order. A phase error is fatal:
// the run stops, already-committed records and registry entries stay in
// place, and nothing is rolled back.
func Run(ctx context.Context, src legacy.Source, rc *RunContext) error {
	provided := make(map[types.Kind]bool)

	for _, p := range phases() {
		for _, need := range p.needs {
			if !provided[need] {
				return fmt.Errorf("phase %s: dependency %s not yet migrated", p.name, need)
			}
		}
		if err := p.run(ctx, src, rc); err != nil {
			return fmt.Errorf("phase %s: %w", p.name, err)
		}
		for _, kind := range p.provides {
			provided[kind] = true
		}
	}

	rc.Reporter.Summary(rc.Registry.Counts())
	return nil
}
