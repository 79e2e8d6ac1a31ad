// Package store defines the target-store boundary for the migration.
//
// Concrete implementations live in the sqlstore and memory sub-packages.
// Vendor-specific error shapes never cross this boundary: bulk inserts
// report a tagged BulkResult and everything else is normalized onto the
// sentinel errors below.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/kwatalab/bsm/internal/types"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Inserted is one committed record of a bulk insert: its index in the
// input slice and the id the target store assigned.
type Inserted struct {
	Index int
	ID    string
}

// Conflict is one uniqueness violation: the input index, the unique field
// that collided and the colliding value.
type Conflict struct {
	Index int
	Field string
	Value string
}

// Failure is any other per-record insert error.
type Failure struct {
	Index  int
	Reason string
}

// BulkResult reports a best-effort bulk insert. Committed records were
// written and had ids assigned (in input order); Conflicts and Failures
// were not written.
type BulkResult struct {
	Committed []Inserted
	Conflicts []Conflict
	Failures  []Failure
}

// Target is the write surface shared by all three target stores.
//
// BulkInsert writes recs in "continue past per-item failure" mode and
// assigns each committed record its id via SetRecordID. It returns an error
// only for connection-level trouble, which is fatal to the run; per-record
// problems land in the BulkResult.
//
// FindIDByField looks up an existing record's id by a unique field, for
// duplicate-key conflict resolution. Returns ErrNotFound when absent.
type Target interface {
	BulkInsert(ctx context.Context, recs []types.Record) (*BulkResult, error)
	FindIDByField(ctx context.Context, kind types.Kind, field, value string) (string, error)
	Close() error
}

// Accounts is the target store owning users, products and ratings.
type Accounts interface {
	Target
	// UpdateProductRatingSummary persists a recomputed rating aggregate.
	UpdateProductRatingSummary(ctx context.Context, productID string, count int, average float64) error
}

// Billing is the target store owning transactions and subscriptions.
type Billing interface {
	Target
	// SubscriptionsByUserSince returns a user's subscriptions created on or
	// after the given time, for commission recalculation.
	SubscriptionsByUserSince(ctx context.Context, userID string, since time.Time) ([]*types.Subscription, error)
}

// Partners is the target store owning partners, partner transactions and
// referrals.
type Partners interface {
	Target
	ActivePartners(ctx context.Context) ([]*types.Partner, error)
	// ReferralsByReferrer returns non-archived referral edges where the
	// given user is the referrer.
	ReferralsByReferrer(ctx context.Context, referrerUserID string) ([]*types.Referral, error)
	PartnerLedger(ctx context.Context, partnerID string) ([]*types.PartnerTransaction, error)
	// ReplaceLedger atomically replaces a partner's ledger entries and
	// balance as a single unit of work.
	ReplaceLedger(ctx context.Context, partnerID string, entries []*types.PartnerTransaction, balance float64) error
}
