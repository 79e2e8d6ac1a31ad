package sqlstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/kwatalab/bsm/internal/store"
	"github.com/kwatalab/bsm/internal/types"
)

// tableFor maps entity kinds to their tables.
func tableFor(kind types.Kind) (string, bool) {
	switch kind {
	case types.KindUser:
		return "users", true
	case types.KindProduct:
		return "products", true
	case types.KindRating:
		return "ratings", true
	case types.KindTransaction:
		return "transactions", true
	case types.KindSubscription:
		return "subscriptions", true
	case types.KindReferral:
		return "referrals", true
	case types.KindPartner:
		return "partners", true
	case types.KindPartnerTransaction:
		return "partner_transactions", true
	}
	return "", false
}

// buildInsert renders the INSERT for one record. The record's id must
// already be assigned.
func buildInsert(rec types.Record) (query string, args []interface{}, err error) {
	switch r := rec.(type) {
	case *types.User:
		return `INSERT INTO users (id, legacy_ref, name, email, phone, momo_number, country, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			[]interface{}{r.ID, r.LegacyID, r.Name, r.Email, nullable(r.Phone), nullable(r.MomoNumber), r.Country, r.CreatedAt}, nil
	case *types.Product:
		images, jerr := json.Marshal(r.Images)
		if jerr != nil {
			return "", nil, fmt.Errorf("encode images: %w", jerr)
		}
		return `INSERT INTO products (id, legacy_ref, user_id, title, description, price, currency, status, images, rating_count, rating_average, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			[]interface{}{r.ID, r.LegacyID, r.UserID, r.Title, r.Description, r.Price, r.Currency, string(r.Status), string(images), r.RatingCount, r.RatingAverage, r.CreatedAt}, nil
	case *types.Rating:
		return `INSERT INTO ratings (id, legacy_ref, product_id, user_id, stars, comment, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			[]interface{}{r.ID, r.LegacyID, r.ProductID, r.UserID, r.Stars, r.Comment, r.CreatedAt}, nil
	case *types.Transaction:
		return `INSERT INTO transactions (id, legacy_ref, user_id, type, amount, status, reference, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			[]interface{}{r.ID, r.LegacyID, r.UserID, string(r.Type), r.Amount, r.Status, r.Reference, r.CreatedAt}, nil
	case *types.Subscription:
		return `INSERT INTO subscriptions (id, legacy_ref, user_id, type, status, starts_at, expires_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			[]interface{}{r.ID, r.LegacyID, r.UserID, string(r.Type), r.Status, r.StartsAt, r.ExpiresAt, r.CreatedAt}, nil
	case *types.Referral:
		return `INSERT INTO referrals (id, legacy_ref, referrer_id, referred_id, level, archived, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			[]interface{}{r.ID, r.LegacyID, r.ReferrerID, r.ReferredID, r.Level, r.Archived, r.CreatedAt}, nil
	case *types.Partner:
		return `INSERT INTO partners (id, legacy_ref, user_id, pack, balance, active, activated_at, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			[]interface{}{r.ID, r.LegacyID, r.UserID, string(r.Pack), r.Balance, r.Active, r.ActivatedAt, r.CreatedAt}, nil
	case *types.PartnerTransaction:
		return `INSERT INTO partner_transactions (id, legacy_ref, partner_id, subscription_type, amount, label, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			[]interface{}{r.ID, nullable(r.LegacyID), r.PartnerID, string(r.SubscriptionType), r.Amount, r.Label, r.CreatedAt}, nil
	}
	return "", nil, fmt.Errorf("unsupported record type %T", rec)
}

// nullable maps empty strings to NULL so unique columns (users.phone) do
// not collide on the empty value.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// uniqueFieldValue reads the value of a unique column back off the record,
// for conflict reporting on drivers that omit it from the error message.
func uniqueFieldValue(rec types.Record, field string) string {
	switch r := rec.(type) {
	case *types.User:
		switch field {
		case "email":
			return r.Email
		case "phone":
			return r.Phone
		}
	case *types.Partner:
		if field == "user_id" {
			return r.UserID
		}
	}
	return ""
}

// BulkInsert writes recs one statement at a time, continuing past
// per-record failures. Ids are assigned here (the target store owns id
// assignment). A connection-level error aborts immediately with the
// partial result already reflected in the database.
func (s *SQLStore) BulkInsert(ctx context.Context, recs []types.Record) (*store.BulkResult, error) {
	res := &store.BulkResult{}
	for i, rec := range recs {
		table, ok := tableFor(rec.Kind())
		if !ok {
			res.Failures = append(res.Failures, store.Failure{Index: i, Reason: fmt.Sprintf("unknown kind %s", rec.Kind())})
			continue
		}
		if rec.RecordID() == "" {
			rec.SetRecordID(uuid.NewString())
		}
		query, args, err := buildInsert(rec)
		if err != nil {
			res.Failures = append(res.Failures, store.Failure{Index: i, Reason: err.Error()})
			continue
		}
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			if isConnectionError(ctx, err) {
				return nil, wrapDBError(fmt.Sprintf("insert into %s", table), err)
			}
			if isUniqueViolation(err) {
				field := conflictField(err, table)
				res.Conflicts = append(res.Conflicts, store.Conflict{
					Index: i,
					Field: field,
					Value: uniqueFieldValue(rec, field),
				})
				continue
			}
			res.Failures = append(res.Failures, store.Failure{Index: i, Reason: err.Error()})
			continue
		}
		res.Committed = append(res.Committed, store.Inserted{Index: i, ID: rec.RecordID()})
	}
	return res, nil
}
