package commission

import (
	"context"
	"fmt"
	"sort"

	"github.com/kwatalab/bsm/internal/store"
	"github.com/kwatalab/bsm/internal/types"
)

// Result is one partner's recomputed ledger: the delta between the stored
// balance and what the referral graph and subscription history support.
type Result struct {
	Partner        *types.Partner
	CurrentBalance float64
	NewBalance     float64
	Entries        []*types.PartnerTransaction
}

// Delta returns recomputed minus current balance.
func (r *Result) Delta() float64 { return r.NewBalance - r.CurrentBalance }

// Recalculator rebuilds partner commission ledgers from first principles.
// Recalculate is read-only; Apply performs the destructive replacement.
// Back-to-back runs are deterministic: every value derives from the
// referral graph, the subscription history and the fixed rate tables,
// never from a prior run's output.
type Recalculator struct {
	Billing  store.Billing
	Partners store.Partners
}

// Recalculate computes every active partner's ledger:
// each non-archived referral edge where the partner is the referrer, each
// referred user's subscriptions created on or after the partner's
// activation, one entry per qualifying subscription, timestamped from the
// subscription's creation time and sorted chronologically.
func (r *Recalculator) Recalculate(ctx context.Context) ([]*Result, error) {
	partners, err := r.Partners.ActivePartners(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active partners: %w", err)
	}

	results := make([]*Result, 0, len(partners))
	for _, partner := range partners {
		res, err := r.recalculatePartner(ctx, partner)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *Recalculator) recalculatePartner(ctx context.Context, partner *types.Partner) (*Result, error) {
	referrals, err := r.Partners.ReferralsByReferrer(ctx, partner.UserID)
	if err != nil {
		return nil, fmt.Errorf("partner %s: list referrals: %w", partner.ID, err)
	}

	var entries []*types.PartnerTransaction
	total := 0.0
	for _, ref := range referrals {
		subs, err := r.Billing.SubscriptionsByUserSince(ctx, ref.ReferredID, partner.ActivatedAt)
		if err != nil {
			return nil, fmt.Errorf("partner %s: subscriptions of %s: %w", partner.ID, ref.ReferredID, err)
		}
		for _, sub := range subs {
			amount := Amount(sub.Type, partner.Pack)
			if amount == 0 {
				continue
			}
			entries = append(entries, &types.PartnerTransaction{
				PartnerID:        partner.ID,
				SubscriptionType: sub.Type,
				Amount:           amount,
				Label:            fmt.Sprintf("level %d referral commission", ref.Level),
				CreatedAt:        sub.CreatedAt,
			})
			total += amount
		}
	}

	// Chronological ledger even though it is rebuilt wholesale.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})

	return &Result{
		Partner:        partner,
		CurrentBalance: partner.Balance,
		NewBalance:     total,
		Entries:        entries,
	}, nil
}

// Apply replaces each partner's ledger entries and balance atomically, one
// unit of work per partner.
func (r *Recalculator) Apply(ctx context.Context, results []*Result) error {
	for _, res := range results {
		if err := r.Partners.ReplaceLedger(ctx, res.Partner.ID, res.Entries, res.NewBalance); err != nil {
			return fmt.Errorf("partner %s: replace ledger: %w", res.Partner.ID, err)
		}
	}
	return nil
}
