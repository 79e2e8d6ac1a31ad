// Package migrate drives the one-shot store-split migration: an ordered
// sequence of phases, each streaming one legacy collection through the
// schema transformer and the batch writer into its target store, with the
// identity registry threaded through every step.
package migrate

import (
	"github.com/kwatalab/bsm/internal/registry"
	"github.com/kwatalab/bsm/internal/report"
	"github.com/kwatalab/bsm/internal/store"
)

// DefaultBatchSize is the bulk-insert chunk size. Large enough to amortize
// round trips, small enough that a partial failure loses little work.
const DefaultBatchSize = 250

// Options configures a migration run.
type Options struct {
	BatchSize int
}

// RunContext is the explicit run-scoped state: the identity registry, the
// open target stores, options and the reporter. It is owned by the phase
// coordinator and passed by reference into every component call; there is
// no ambient shared state. The run is single-threaded, so none of this is
// locked.
type RunContext struct {
	Registry *registry.Registry
	Accounts store.Accounts
	Billing  store.Billing
	Partners store.Partners
	Reporter *report.Reporter
	Opts     Options

	// ratingAgg accumulates per-product rating tallies as ratings commit,
	// for the aggregate phase. Keyed by target product id.
	ratingAgg map[string]*ratingTally
}

type ratingTally struct {
	count int
	sum   int
}

// NewRunContext builds a RunContext around open stores.
func NewRunContext(accounts store.Accounts, billing store.Billing, partners store.Partners, rep *report.Reporter, opts Options) *RunContext {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &RunContext{
		Registry:  registry.New(),
		Accounts:  accounts,
		Billing:   billing,
		Partners:  partners,
		Reporter:  rep,
		Opts:      opts,
		ratingAgg: make(map[string]*ratingTally),
	}
}
