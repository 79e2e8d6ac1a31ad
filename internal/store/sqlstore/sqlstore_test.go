package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kwatalab/bsm/internal/store"
	"github.com/kwatalab/bsm/internal/types"
)

func openTestStore(t *testing.T, role Role) *SQLStore {
	t.Helper()
	s, err := Open(context.Background(), role, filepath.Join(t.TempDir(), string(role)+".db"))
	if err != nil {
		t.Fatalf("open %s store: %v", role, err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMySQLConnString(t *testing.T) {
	tests := []struct {
		name    string
		dsn     string
		keeps   []string
		wantErr bool
	}{
		{
			name:  "plain operator dsn gains parseTime",
			dsn:   "bsm:secret@tcp(db.internal:3306)/accounts",
			keeps: []string{"parseTime=true", "@tcp(db.internal:3306)", "/accounts"},
		},
		{
			name:  "existing params survive",
			dsn:   "bsm:secret@tcp(db.internal:3306)/billing?charset=utf8mb4",
			keeps: []string{"parseTime=true", "charset=utf8mb4"},
		},
		{
			name:  "parseTime already set",
			dsn:   "bsm:secret@tcp(db.internal:3306)/partners?parseTime=true",
			keeps: []string{"parseTime=true", "/partners"},
		},
		{
			name:    "garbage dsn",
			dsn:     "not-a-dsn",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := mysqlConnString(tt.dsn)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("mysqlConnString(%q) = %q, want error", tt.dsn, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("mysqlConnString(%q): %v", tt.dsn, err)
			}
			for _, want := range tt.keeps {
				if !strings.Contains(got, want) {
					t.Errorf("mysqlConnString(%q) = %q, missing %q", tt.dsn, got, want)
				}
			}
		})
	}
}

func TestBulkInsertClassifiesConflicts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, RoleAccounts)

	now := time.Date(2021, 5, 1, 12, 0, 0, 0, time.UTC)
	recs := []types.Record{
		&types.User{LegacyID: "l1", Name: "A", Email: "a@example.com", Phone: "237611111111", Country: "CM", CreatedAt: now},
		&types.User{LegacyID: "l2", Name: "B", Email: "b@example.com", Country: "CM", CreatedAt: now},
		// Same email as the first record.
		&types.User{LegacyID: "l3", Name: "A2", Email: "a@example.com", Country: "CM", CreatedAt: now},
	}
	res, err := s.BulkInsert(ctx, recs)
	if err != nil {
		t.Fatalf("BulkInsert: %v", err)
	}
	if len(res.Committed) != 2 {
		t.Fatalf("Committed = %d, want 2", len(res.Committed))
	}
	if len(res.Conflicts) != 1 {
		t.Fatalf("Conflicts = %d, want 1", len(res.Conflicts))
	}
	c := res.Conflicts[0]
	if c.Index != 2 || c.Field != "email" || c.Value != "a@example.com" {
		t.Errorf("Conflict = %+v, want index 2 on email", c)
	}
	if recs[0].RecordID() == "" || recs[1].RecordID() == "" {
		t.Error("committed records did not get ids assigned")
	}
}

func TestBulkInsertEmptyPhonesDoNotCollide(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, RoleAccounts)

	now := time.Now().UTC().Truncate(time.Second)
	recs := []types.Record{
		&types.User{LegacyID: "l1", Email: "a@example.com", Country: "CM", CreatedAt: now},
		&types.User{LegacyID: "l2", Email: "b@example.com", Country: "CM", CreatedAt: now},
	}
	res, err := s.BulkInsert(ctx, recs)
	if err != nil {
		t.Fatalf("BulkInsert: %v", err)
	}
	if len(res.Conflicts) != 0 || len(res.Committed) != 2 {
		t.Fatalf("two users without phones should both commit, got %+v", res)
	}
}

func TestFindIDByField(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, RoleAccounts)

	u := &types.User{LegacyID: "l1", Email: "a@example.com", Phone: "237611111111", Country: "CM", CreatedAt: time.Now().UTC()}
	if _, err := s.BulkInsert(ctx, []types.Record{u}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	id, err := s.FindIDByField(ctx, types.KindUser, "email", "a@example.com")
	if err != nil {
		t.Fatalf("FindIDByField: %v", err)
	}
	if id != u.ID {
		t.Errorf("id = %q, want %q", id, u.ID)
	}

	if _, err := s.FindIDByField(ctx, types.KindUser, "email", "missing@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing lookup error = %v, want ErrNotFound", err)
	}
	if _, err := s.FindIDByField(ctx, types.KindUser, "name", "A"); err == nil {
		t.Error("lookup on non-allowlisted field should fail")
	}
}

func TestUpdateProductRatingSummary(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, RoleAccounts)

	now := time.Now().UTC().Truncate(time.Second)
	u := &types.User{LegacyID: "l1", Email: "a@example.com", Country: "CM", CreatedAt: now}
	if _, err := s.BulkInsert(ctx, []types.Record{u}); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	p := &types.Product{LegacyID: "p1", UserID: u.ID, Title: "Lamp", Price: 100, Status: types.ProductApproved, CreatedAt: now}
	if _, err := s.BulkInsert(ctx, []types.Record{p}); err != nil {
		t.Fatalf("insert product: %v", err)
	}

	if err := s.UpdateProductRatingSummary(ctx, p.ID, 3, 4.5); err != nil {
		t.Fatalf("UpdateProductRatingSummary: %v", err)
	}

	var count int
	var avg float64
	if err := s.db.QueryRowContext(ctx, "SELECT rating_count, rating_average FROM products WHERE id = ?", p.ID).Scan(&count, &avg); err != nil {
		t.Fatalf("readback: %v", err)
	}
	if count != 3 || avg != 4.5 {
		t.Errorf("summary = (%d, %v), want (3, 4.5)", count, avg)
	}

	if err := s.UpdateProductRatingSummary(ctx, "no-such-product", 1, 1); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing product error = %v, want ErrNotFound", err)
	}
}

func TestReplaceLedger(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, RolePartners)

	now := time.Date(2021, 8, 1, 0, 0, 0, 0, time.UTC)
	p := &types.Partner{LegacyID: "pr1", UserID: "user-1", Pack: types.PackSilver, Active: true, ActivatedAt: now, CreatedAt: now}
	if _, err := s.BulkInsert(ctx, []types.Record{p}); err != nil {
		t.Fatalf("insert partner: %v", err)
	}
	stale := &types.PartnerTransaction{LegacyID: "old", PartnerID: p.ID, SubscriptionType: types.SubMonthly, Amount: 1, CreatedAt: now}
	if _, err := s.BulkInsert(ctx, []types.Record{stale}); err != nil {
		t.Fatalf("insert stale entry: %v", err)
	}

	entries := []*types.PartnerTransaction{
		{PartnerID: p.ID, SubscriptionType: types.SubMonthly, Amount: 225, Label: "level 1 referral commission", CreatedAt: now.AddDate(0, 1, 0)},
		{PartnerID: p.ID, SubscriptionType: types.SubYearly, Amount: 2250, Label: "level 1 referral commission", CreatedAt: now.AddDate(0, 2, 0)},
	}
	if err := s.ReplaceLedger(ctx, p.ID, entries, 2475); err != nil {
		t.Fatalf("ReplaceLedger: %v", err)
	}

	got, err := s.PartnerLedger(ctx, p.ID)
	if err != nil {
		t.Fatalf("PartnerLedger: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ledger has %d entries, want 2 (stale entry must be gone)", len(got))
	}
	if got[0].Amount != 225 || got[1].Amount != 2250 {
		t.Errorf("ledger amounts = %v, %v", got[0].Amount, got[1].Amount)
	}

	partners, err := s.ActivePartners(ctx)
	if err != nil {
		t.Fatalf("ActivePartners: %v", err)
	}
	if len(partners) != 1 || partners[0].Balance != 2475 {
		t.Fatalf("partner balance = %+v, want 2475", partners)
	}

	if err := s.ReplaceLedger(ctx, "no-such-partner", nil, 0); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing partner error = %v, want ErrNotFound", err)
	}
}

func TestSubscriptionsByUserSince(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, RoleBilling)

	base := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	recs := []types.Record{
		&types.Subscription{LegacyID: "s1", UserID: "u1", Type: types.SubMonthly, Status: "active", StartsAt: base, CreatedAt: base},
		&types.Subscription{LegacyID: "s2", UserID: "u1", Type: types.SubYearly, Status: "active", StartsAt: base.AddDate(0, 6, 0), CreatedAt: base.AddDate(0, 6, 0)},
		&types.Subscription{LegacyID: "s3", UserID: "u2", Type: types.SubMonthly, Status: "active", StartsAt: base, CreatedAt: base},
	}
	if _, err := s.BulkInsert(ctx, recs); err != nil {
		t.Fatalf("insert: %v", err)
	}

	subs, err := s.SubscriptionsByUserSince(ctx, "u1", base.AddDate(0, 3, 0))
	if err != nil {
		t.Fatalf("SubscriptionsByUserSince: %v", err)
	}
	if len(subs) != 1 || subs[0].LegacyID != "s2" {
		t.Fatalf("subs = %+v, want only s2", subs)
	}
	if subs[0].ExpiresAt != nil {
		t.Errorf("ExpiresAt = %v, want nil", subs[0].ExpiresAt)
	}

	all, err := s.SubscriptionsByUserSince(ctx, "u1", time.Time{})
	if err != nil {
		t.Fatalf("SubscriptionsByUserSince(all): %v", err)
	}
	if len(all) != 2 || all[0].LegacyID != "s1" {
		t.Fatalf("all = %+v, want s1 then s2", all)
	}
}
