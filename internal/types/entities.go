// Package types defines the target-side data structures for the store split.
package types

import "time"

// Kind identifies an entity type in the identity registry and at the
// store boundary.
type Kind string

const (
	KindUser               Kind = "user"
	KindProduct            Kind = "product"
	KindRating             Kind = "rating"
	KindTransaction        Kind = "transaction"
	KindSubscription       Kind = "subscription"
	KindReferral           Kind = "referral"
	KindPartner            Kind = "partner"
	KindPartnerTransaction Kind = "partner_transaction"
)

// CountryUnresolved is the sentinel for users whose country could not be
// inferred from any phone number.
const CountryUnresolved = "ZZ"

// ProductStatus is the moderation state of a product listing.
type ProductStatus string

const (
	ProductPending  ProductStatus = "pending"
	ProductApproved ProductStatus = "approved"
)

// SubscriptionType keys the commission base-amount table.
type SubscriptionType string

const (
	SubMonthly   SubscriptionType = "monthly"
	SubQuarterly SubscriptionType = "quarterly"
	SubYearly    SubscriptionType = "yearly"
	SubLifetime  SubscriptionType = "lifetime"
)

// PartnerPack keys the commission percentage table.
type PartnerPack string

const (
	PackBronze PartnerPack = "bronze"
	PackSilver PartnerPack = "silver"
	PackGold   PartnerPack = "gold"
)

// TransactionType classifies general-ledger transactions.
type TransactionType string

const (
	TxDeposit         TransactionType = "deposit"
	TxWithdrawal      TransactionType = "withdrawal"
	TxPurchase        TransactionType = "purchase"
	TxSubscription    TransactionType = "subscription"
	TxPartnerEarnings TransactionType = "partner_earnings"
)

// Record is implemented by every target entity so the batch writer and the
// store boundary can handle them uniformly. RecordID is empty until the
// owning target store assigns one at insert time.
type Record interface {
	Kind() Kind
	RecordID() string
	SetRecordID(id string)
	// LegacyRef returns the legacy identifier this record was migrated
	// from, for identity registration and skip logging.
	LegacyRef() string
}

// Image is a product image reference, either already in the new path
// convention or passed through unchanged from an unparseable legacy value.
type Image struct {
	FileID string `json:"file_id,omitempty"`
	URL    string `json:"url"`
}

// User lives in the accounts store.
type User struct {
	ID         string    `json:"id"`
	LegacyID   string    `json:"legacy_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone,omitempty"`
	MomoNumber string    `json:"momo_number,omitempty"`
	Country    string    `json:"country"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u *User) Kind() Kind           { return KindUser }
func (u *User) RecordID() string     { return u.ID }
func (u *User) SetRecordID(id string) { u.ID = id }
func (u *User) LegacyRef() string    { return u.LegacyID }

// Product lives in the accounts store as a top-level record referencing its
// owning user. RatingCount/RatingAverage are recomputed from migrated
// ratings, never copied from the legacy aggregate.
type Product struct {
	ID            string        `json:"id"`
	LegacyID      string        `json:"legacy_id"`
	UserID        string        `json:"user_id"`
	Title         string        `json:"title"`
	Description   string        `json:"description,omitempty"`
	Price         float64       `json:"price"`
	Currency      string        `json:"currency,omitempty"`
	Status        ProductStatus `json:"status"`
	Images        []Image       `json:"images,omitempty"`
	RatingCount   int           `json:"rating_count"`
	RatingAverage float64       `json:"rating_average"`
	CreatedAt     time.Time     `json:"created_at"`
}

func (p *Product) Kind() Kind            { return KindProduct }
func (p *Product) RecordID() string      { return p.ID }
func (p *Product) SetRecordID(id string) { p.ID = id }
func (p *Product) LegacyRef() string     { return p.LegacyID }

// Rating lives in the accounts store, top-level, referencing both the rated
// product and the rating user.
type Rating struct {
	ID        string    `json:"id"`
	LegacyID  string    `json:"legacy_id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Stars     int       `json:"stars"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Rating) Kind() Kind            { return KindRating }
func (r *Rating) RecordID() string      { return r.ID }
func (r *Rating) SetRecordID(id string) { r.ID = id }
func (r *Rating) LegacyRef() string     { return r.LegacyID }

// Transaction lives in the billing store.
type Transaction struct {
	ID        string          `json:"id"`
	LegacyID  string          `json:"legacy_id"`
	UserID    string          `json:"user_id"`
	Type      TransactionType `json:"type"`
	Amount    float64         `json:"amount"`
	Status    string          `json:"status"`
	Reference string          `json:"reference,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func (t *Transaction) Kind() Kind            { return KindTransaction }
func (t *Transaction) RecordID() string      { return t.ID }
func (t *Transaction) SetRecordID(id string) { t.ID = id }
func (t *Transaction) LegacyRef() string     { return t.LegacyID }

// Subscription lives in the billing store. A nil ExpiresAt means the
// subscription never expires.
type Subscription struct {
	ID        string           `json:"id"`
	LegacyID  string           `json:"legacy_id"`
	UserID    string           `json:"user_id"`
	Type      SubscriptionType `json:"type"`
	Status    string           `json:"status"`
	StartsAt  time.Time        `json:"starts_at"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

func (s *Subscription) Kind() Kind            { return KindSubscription }
func (s *Subscription) RecordID() string      { return s.ID }
func (s *Subscription) SetRecordID(id string) { s.ID = id }
func (s *Subscription) LegacyRef() string     { return s.LegacyID }

// Referral lives in the partners store. Referrer and referred are user ids
// from the accounts store; level is 1..3.
type Referral struct {
	ID         string    `json:"id"`
	LegacyID   string    `json:"legacy_id"`
	ReferrerID string    `json:"referrer_id"`
	ReferredID string    `json:"referred_id"`
	Level      int       `json:"level"`
	Archived   bool      `json:"archived"`
	CreatedAt  time.Time `json:"created_at"`
}

func (r *Referral) Kind() Kind            { return KindReferral }
func (r *Referral) RecordID() string      { return r.ID }
func (r *Referral) SetRecordID(id string) { r.ID = id }
func (r *Referral) LegacyRef() string     { return r.LegacyID }

// Partner lives in the partners store. Balance is the sum of recomputed
// ledger entries, captured at insert time and maintained by the
// commission recalculator afterward.
type Partner struct {
	ID          string      `json:"id"`
	LegacyID    string      `json:"legacy_id"`
	UserID      string      `json:"user_id"`
	Pack        PartnerPack `json:"pack"`
	Balance     float64     `json:"balance"`
	Active      bool        `json:"active"`
	ActivatedAt time.Time   `json:"activated_at"`
	CreatedAt   time.Time   `json:"created_at"`
}

func (p *Partner) Kind() Kind            { return KindPartner }
func (p *Partner) RecordID() string      { return p.ID }
func (p *Partner) SetRecordID(id string) { p.ID = id }
func (p *Partner) LegacyRef() string     { return p.LegacyID }

// PartnerTransaction is one commission ledger entry in the partners store.
type PartnerTransaction struct {
	ID               string           `json:"id"`
	LegacyID         string           `json:"legacy_id,omitempty"`
	PartnerID        string           `json:"partner_id"`
	SubscriptionType SubscriptionType `json:"subscription_type"`
	Amount           float64          `json:"amount"`
	Label            string           `json:"label,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

func (p *PartnerTransaction) Kind() Kind            { return KindPartnerTransaction }
func (p *PartnerTransaction) RecordID() string      { return p.ID }
func (p *PartnerTransaction) SetRecordID(id string) { p.ID = id }
func (p *PartnerTransaction) LegacyRef() string     { return p.LegacyID }
