package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kwatalab/bsm/internal/store"
	"github.com/kwatalab/bsm/internal/types"
)

// lookupFields allowlists the columns FindIDByField may query, per kind.
// Only unique (or effectively unique) columns belong here; the field name
// is interpolated into SQL and must never come from record data.
var lookupFields = map[types.Kind]map[string]bool{
	types.KindUser:    {"email": true, "phone": true, "legacy_ref": true},
	types.KindPartner: {"user_id": true, "legacy_ref": true},
	types.KindProduct: {"legacy_ref": true},
}

// FindIDByField returns the id of an existing record matching a unique
// field, or store.ErrNotFound.
func (s *SQLStore) FindIDByField(ctx context.Context, kind types.Kind, field, value string) (string, error) {
	table, ok := tableFor(kind)
	if !ok {
		return "", fmt.Errorf("unknown kind %s", kind)
	}
	if !lookupFields[kind][field] {
		return "", fmt.Errorf("field %q not searchable for %s", field, kind)
	}
	// nolint:gosec // G201: table and field come from fixed allowlists above
	query := fmt.Sprintf("SELECT id FROM %s WHERE %s = ?", table, field)

	var id string
	err := s.db.QueryRowContext(ctx, query, value).Scan(&id)
	if err != nil {
		return "", wrapDBError(fmt.Sprintf("find %s by %s", kind, field), err)
	}
	return id, nil
}

// UpdateProductRatingSummary persists a recomputed rating aggregate.
func (s *SQLStore) UpdateProductRatingSummary(ctx context.Context, productID string, count int, average float64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET rating_count = ?, rating_average = ? WHERE id = ?",
		count, average, productID)
	if err != nil {
		return wrapDBError("update product rating summary", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update product rating summary: product %s: %w", productID, store.ErrNotFound)
	}
	return nil
}

// SubscriptionsByUserSince returns a user's subscriptions created on or
// after since, oldest first.
func (s *SQLStore) SubscriptionsByUserSince(ctx context.Context, userID string, since time.Time) ([]*types.Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, legacy_ref, user_id, type, status, starts_at, expires_at, created_at
		 FROM subscriptions WHERE user_id = ? AND created_at >= ? ORDER BY created_at`,
		userID, since)
	if err != nil {
		return nil, wrapDBError("query subscriptions", err)
	}
	defer rows.Close()

	var subs []*types.Subscription
	for rows.Next() {
		var sub types.Subscription
		var subType string
		var expires sql.NullTime
		if err := rows.Scan(&sub.ID, &sub.LegacyID, &sub.UserID, &subType, &sub.Status, &sub.StartsAt, &expires, &sub.CreatedAt); err != nil {
			return nil, wrapDBError("scan subscription", err)
		}
		sub.Type = types.SubscriptionType(subType)
		if expires.Valid {
			t := expires.Time
			sub.ExpiresAt = &t
		}
		subs = append(subs, &sub)
	}
	return subs, rows.Err()
}

// ActivePartners returns every partner with active set.
func (s *SQLStore) ActivePartners(ctx context.Context) ([]*types.Partner, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, legacy_ref, user_id, pack, balance, active, activated_at, created_at
		 FROM partners WHERE active = ? ORDER BY created_at`, true)
	if err != nil {
		return nil, wrapDBError("query active partners", err)
	}
	defer rows.Close()

	var partners []*types.Partner
	for rows.Next() {
		var p types.Partner
		var pack string
		if err := rows.Scan(&p.ID, &p.LegacyID, &p.UserID, &pack, &p.Balance, &p.Active, &p.ActivatedAt, &p.CreatedAt); err != nil {
			return nil, wrapDBError("scan partner", err)
		}
		p.Pack = types.PartnerPack(pack)
		partners = append(partners, &p)
	}
	return partners, rows.Err()
}

// ReferralsByReferrer returns non-archived referral edges for a referrer.
func (s *SQLStore) ReferralsByReferrer(ctx context.Context, referrerUserID string) ([]*types.Referral, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, legacy_ref, referrer_id, referred_id, level, archived, created_at
		 FROM referrals WHERE referrer_id = ? AND archived = ? ORDER BY created_at`,
		referrerUserID, false)
	if err != nil {
		return nil, wrapDBError("query referrals", err)
	}
	defer rows.Close()

	var refs []*types.Referral
	for rows.Next() {
		var r types.Referral
		if err := rows.Scan(&r.ID, &r.LegacyID, &r.ReferrerID, &r.ReferredID, &r.Level, &r.Archived, &r.CreatedAt); err != nil {
			return nil, wrapDBError("scan referral", err)
		}
		refs = append(refs, &r)
	}
	return refs, rows.Err()
}

// PartnerLedger returns a partner's ledger entries, oldest first.
func (s *SQLStore) PartnerLedger(ctx context.Context, partnerID string) ([]*types.PartnerTransaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, legacy_ref, partner_id, subscription_type, amount, label, created_at
		 FROM partner_transactions WHERE partner_id = ? ORDER BY created_at`, partnerID)
	if err != nil {
		return nil, wrapDBError("query partner ledger", err)
	}
	defer rows.Close()

	var entries []*types.PartnerTransaction
	for rows.Next() {
		var e types.PartnerTransaction
		var legacyRef sql.NullString
		var label sql.NullString
		var subType string
		if err := rows.Scan(&e.ID, &legacyRef, &e.PartnerID, &subType, &e.Amount, &label, &e.CreatedAt); err != nil {
			return nil, wrapDBError("scan partner transaction", err)
		}
		e.LegacyID = legacyRef.String
		e.Label = label.String
		e.SubscriptionType = types.SubscriptionType(subType)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// ReplaceLedger replaces a partner's ledger entries and balance as a single
// unit of work. This is the only grouped atomic write in the system; the
// migration itself commits eagerly per batch.
func (s *SQLStore) ReplaceLedger(ctx context.Context, partnerID string, entries []*types.PartnerTransaction, balance float64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM partner_transactions WHERE partner_id = ?", partnerID); err != nil {
			return wrapDBError("clear partner ledger", err)
		}
		for _, e := range entries {
			if e.ID == "" {
				e.ID = uuid.NewString()
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO partner_transactions (id, legacy_ref, partner_id, subscription_type, amount, label, created_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				e.ID, nullable(e.LegacyID), partnerID, string(e.SubscriptionType), e.Amount, e.Label, e.CreatedAt); err != nil {
				return wrapDBError("insert ledger entry", err)
			}
		}
		res, err := tx.ExecContext(ctx, "UPDATE partners SET balance = ? WHERE id = ?", balance, partnerID)
		if err != nil {
			return wrapDBError("update partner balance", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("update partner balance: partner %s: %w", partnerID, store.ErrNotFound)
		}
		return nil
	})
}
