// Package memory implements the target-store interfaces on in-process
// maps. It backs dry runs and tests, emulating the same uniqueness rules
// the SQL schemas enforce (users.email, users.phone, partners.user_id).
package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kwatalab/bsm/internal/store"
	"github.com/kwatalab/bsm/internal/types"
)

// Store holds every record kind; each instance usually plays one role but
// nothing stops a test from using one instance for all three.
type Store struct {
	Users               map[string]*types.User
	Products            map[string]*types.Product
	Ratings             map[string]*types.Rating
	Transactions        map[string]*types.Transaction
	Subscriptions       map[string]*types.Subscription
	Referrals           map[string]*types.Referral
	Partners            map[string]*types.Partner
	PartnerTransactions map[string]*types.PartnerTransaction

	closed bool
}

var _ store.Accounts = (*Store)(nil)
var _ store.Billing = (*Store)(nil)
var _ store.Partners = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		Users:               make(map[string]*types.User),
		Products:            make(map[string]*types.Product),
		Ratings:             make(map[string]*types.Rating),
		Transactions:        make(map[string]*types.Transaction),
		Subscriptions:       make(map[string]*types.Subscription),
		Referrals:           make(map[string]*types.Referral),
		Partners:            make(map[string]*types.Partner),
		PartnerTransactions: make(map[string]*types.PartnerTransaction),
	}
}

func (s *Store) Close() error {
	s.closed = true
	return nil
}

// conflictOn returns the unique field rec collides on against existing
// records, or "".
func (s *Store) conflictOn(rec types.Record) (field, value string) {
	switch r := rec.(type) {
	case *types.User:
		for _, u := range s.Users {
			if u.Email == r.Email {
				return "email", r.Email
			}
		}
		if r.Phone != "" {
			for _, u := range s.Users {
				if u.Phone == r.Phone {
					return "phone", r.Phone
				}
			}
		}
	case *types.Partner:
		for _, p := range s.Partners {
			if p.UserID == r.UserID {
				return "user_id", r.UserID
			}
		}
	}
	return "", ""
}

func (s *Store) put(rec types.Record) {
	switch r := rec.(type) {
	case *types.User:
		s.Users[r.ID] = r
	case *types.Product:
		s.Products[r.ID] = r
	case *types.Rating:
		s.Ratings[r.ID] = r
	case *types.Transaction:
		s.Transactions[r.ID] = r
	case *types.Subscription:
		s.Subscriptions[r.ID] = r
	case *types.Referral:
		s.Referrals[r.ID] = r
	case *types.Partner:
		s.Partners[r.ID] = r
	case *types.PartnerTransaction:
		s.PartnerTransactions[r.ID] = r
	}
}

// BulkInsert mirrors the sqlstore semantics: continue past per-record
// failures, assign ids at insert time.
func (s *Store) BulkInsert(ctx context.Context, recs []types.Record) (*store.BulkResult, error) {
	if s.closed {
		return nil, fmt.Errorf("store closed")
	}
	res := &store.BulkResult{}
	for i, rec := range recs {
		if field, value := s.conflictOn(rec); field != "" {
			res.Conflicts = append(res.Conflicts, store.Conflict{Index: i, Field: field, Value: value})
			continue
		}
		if rec.RecordID() == "" {
			rec.SetRecordID(uuid.NewString())
		}
		s.put(rec)
		res.Committed = append(res.Committed, store.Inserted{Index: i, ID: rec.RecordID()})
	}
	return res, nil
}

// FindIDByField supports the same unique lookups as the SQL schemas.
func (s *Store) FindIDByField(ctx context.Context, kind types.Kind, field, value string) (string, error) {
	switch kind {
	case types.KindUser:
		for _, u := range s.Users {
			switch field {
			case "email":
				if u.Email == value {
					return u.ID, nil
				}
			case "phone":
				if u.Phone != "" && u.Phone == value {
					return u.ID, nil
				}
			case "legacy_ref":
				if u.LegacyID == value {
					return u.ID, nil
				}
			}
		}
	case types.KindPartner:
		for _, p := range s.Partners {
			switch field {
			case "user_id":
				if p.UserID == value {
					return p.ID, nil
				}
			case "legacy_ref":
				if p.LegacyID == value {
					return p.ID, nil
				}
			}
		}
	case types.KindProduct:
		if field == "legacy_ref" {
			for _, p := range s.Products {
				if p.LegacyID == value {
					return p.ID, nil
				}
			}
		}
	}
	return "", fmt.Errorf("find %s by %s: %w", kind, field, store.ErrNotFound)
}

func (s *Store) UpdateProductRatingSummary(ctx context.Context, productID string, count int, average float64) error {
	p, ok := s.Products[productID]
	if !ok {
		return fmt.Errorf("product %s: %w", productID, store.ErrNotFound)
	}
	p.RatingCount = count
	p.RatingAverage = average
	return nil
}

func (s *Store) SubscriptionsByUserSince(ctx context.Context, userID string, since time.Time) ([]*types.Subscription, error) {
	var subs []*types.Subscription
	for _, sub := range s.Subscriptions {
		if sub.UserID == userID && !sub.CreatedAt.Before(since) {
			subs = append(subs, sub)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].CreatedAt.Before(subs[j].CreatedAt) })
	return subs, nil
}

func (s *Store) ActivePartners(ctx context.Context) ([]*types.Partner, error) {
	var partners []*types.Partner
	for _, p := range s.Partners {
		if p.Active {
			partners = append(partners, p)
		}
	}
	sort.Slice(partners, func(i, j int) bool { return partners[i].CreatedAt.Before(partners[j].CreatedAt) })
	return partners, nil
}

func (s *Store) ReferralsByReferrer(ctx context.Context, referrerUserID string) ([]*types.Referral, error) {
	var refs []*types.Referral
	for _, r := range s.Referrals {
		if r.ReferrerID == referrerUserID && !r.Archived {
			refs = append(refs, r)
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].CreatedAt.Before(refs[j].CreatedAt) })
	return refs, nil
}

func (s *Store) PartnerLedger(ctx context.Context, partnerID string) ([]*types.PartnerTransaction, error) {
	var entries []*types.PartnerTransaction
	for _, e := range s.PartnerTransactions {
		if e.PartnerID == partnerID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CreatedAt.Before(entries[j].CreatedAt) })
	return entries, nil
}

func (s *Store) ReplaceLedger(ctx context.Context, partnerID string, entries []*types.PartnerTransaction, balance float64) error {
	p, ok := s.Partners[partnerID]
	if !ok {
		return fmt.Errorf("partner %s: %w", partnerID, store.ErrNotFound)
	}
	for id, e := range s.PartnerTransactions {
		if e.PartnerID == partnerID {
			delete(s.PartnerTransactions, id)
		}
	}
	for _, e := range entries {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		e.PartnerID = partnerID
		s.PartnerTransactions[e.ID] = e
	}
	p.Balance = balance
	return nil
}
