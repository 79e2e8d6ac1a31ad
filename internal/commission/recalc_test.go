package commission

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwatalab/bsm/internal/store/memory"
	"github.com/kwatalab/bsm/internal/types"
)

func TestAmount(t *testing.T) {
	tests := []struct {
		sub  types.SubscriptionType
		pack types.PartnerPack
		want float64
	}{
		{types.SubMonthly, types.PackBronze, 150},
		{types.SubMonthly, types.PackSilver, 225},
		{types.SubMonthly, types.PackGold, 375},
		{types.SubQuarterly, types.PackBronze, 400},
		{types.SubYearly, types.PackSilver, 2250},
		{types.SubLifetime, types.PackGold, 6250},
		{"weekly", types.PackGold, 0},
		{types.SubMonthly, "platinum", 0},
	}
	for _, tt := range tests {
		if got := Amount(tt.sub, tt.pack); got != tt.want {
			t.Errorf("Amount(%q, %q) = %v, want %v", tt.sub, tt.pack, got, tt.want)
		}
	}
}

// fixture: one active silver partner whose referred user subscribed once
// before activation (ignored) and twice after.
func seedLedgerFixture(t *testing.T) (billing *memory.Store, partners *memory.Store, partnerID string) {
	t.Helper()
	ctx := context.Background()
	billing = memory.New()
	partners = memory.New()

	activated := time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)

	partner := &types.Partner{
		LegacyID: "lp1", UserID: "user-referrer", Pack: types.PackSilver,
		Balance: 999999, Active: true, ActivatedAt: activated, CreatedAt: activated,
	}
	if _, err := partners.BulkInsert(ctx, []types.Record{partner}); err != nil {
		t.Fatalf("seed partner: %v", err)
	}

	recs := []types.Record{
		&types.Referral{LegacyID: "lr1", ReferrerID: "user-referrer", ReferredID: "user-referred", Level: 1, CreatedAt: activated},
		// Archived edges never earn.
		&types.Referral{LegacyID: "lr2", ReferrerID: "user-referrer", ReferredID: "user-other", Level: 1, Archived: true, CreatedAt: activated},
	}
	if _, err := partners.BulkInsert(ctx, recs); err != nil {
		t.Fatalf("seed referrals: %v", err)
	}

	subs := []types.Record{
		&types.Subscription{LegacyID: "ls0", UserID: "user-referred", Type: types.SubMonthly, Status: "active", CreatedAt: activated.AddDate(0, -2, 0)},
		&types.Subscription{LegacyID: "ls1", UserID: "user-referred", Type: types.SubYearly, Status: "active", CreatedAt: activated.AddDate(0, 1, 0)},
		&types.Subscription{LegacyID: "ls2", UserID: "user-referred", Type: types.SubMonthly, Status: "active", CreatedAt: activated.AddDate(0, 2, 0)},
		// Different user, never referred.
		&types.Subscription{LegacyID: "ls3", UserID: "user-unrelated", Type: types.SubLifetime, Status: "active", CreatedAt: activated.AddDate(0, 1, 0)},
	}
	if _, err := billing.BulkInsert(ctx, subs); err != nil {
		t.Fatalf("seed subscriptions: %v", err)
	}

	return billing, partners, partner.ID
}

func TestRecalculate(t *testing.T) {
	ctx := context.Background()
	billing, partners, partnerID := seedLedgerFixture(t)

	recalc := &Recalculator{Billing: billing, Partners: partners}
	results, err := recalc.Recalculate(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, partnerID, res.Partner.ID)
	assert.Equal(t, 999999.0, res.CurrentBalance, "stored balance reported as-is")
	// yearly(15000)*0.15 + monthly(1500)*0.15
	assert.Equal(t, 2475.0, res.NewBalance)
	require.Len(t, res.Entries, 2, "pre-activation and unrelated subs excluded")
	assert.True(t, res.Entries[0].CreatedAt.Before(res.Entries[1].CreatedAt), "entries in chronological order")
	assert.Equal(t, types.SubYearly, res.Entries[0].SubscriptionType)
	assert.Equal(t, 2250.0, res.Entries[0].Amount)
	assert.Equal(t, types.SubMonthly, res.Entries[1].SubscriptionType)
	assert.Equal(t, 225.0, res.Entries[1].Amount)

	// Read-only: nothing changed in the stores.
	ledger, err := partners.PartnerLedger(ctx, partnerID)
	require.NoError(t, err)
	assert.Empty(t, ledger, "dry run must not write")
}

func TestApplyIsDeterministic(t *testing.T) {
	ctx := context.Background()
	billing, partners, partnerID := seedLedgerFixture(t)

	recalc := &Recalculator{Billing: billing, Partners: partners}

	results, err := recalc.Recalculate(ctx)
	require.NoError(t, err)
	require.NoError(t, recalc.Apply(ctx, results))

	ledger, err := partners.PartnerLedger(ctx, partnerID)
	require.NoError(t, err)
	require.Len(t, ledger, 2)

	// Second pass derives from first principles, so nothing drifts.
	again, err := recalc.Recalculate(ctx)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, 2475.0, again[0].CurrentBalance)
	assert.Equal(t, 2475.0, again[0].NewBalance)
	assert.Zero(t, again[0].Delta())

	require.NoError(t, recalc.Apply(ctx, again))
	ledger2, err := partners.PartnerLedger(ctx, partnerID)
	require.NoError(t, err)
	require.Len(t, ledger2, 2)
	for i := range ledger2 {
		assert.Equal(t, ledger[i].Amount, ledger2[i].Amount, "entry %d amount drifted between applies", i)
		assert.True(t, ledger2[i].CreatedAt.Equal(ledger[i].CreatedAt), "entry %d timestamp drifted between applies", i)
	}
}
