// Package legacy models the monolithic source store being retired and
// provides a forward-only cursor over its collections. The legacy side is
// read-only during migration.
package legacy

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a legacy account document. Products are embedded, each carrying
// its embedded ratings.
type User struct {
	ID         primitive.ObjectID `bson:"_id"`
	Name       string             `bson:"name"`
	Email      string             `bson:"email"`
	Phone      Text               `bson:"phone"`
	MomoNumber Text               `bson:"momoNumber"`
	Country    string             `bson:"country"`
	Products   []Product          `bson:"products"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

// Product is embedded in its owning user document.
type Product struct {
	ID          primitive.ObjectID `bson:"_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Price       Amount             `bson:"price"`
	Currency    string             `bson:"currency"`
	Accepted    bool               `bson:"accepted"`
	Images      []string           `bson:"images"`
	Ratings     []Rating           `bson:"ratings"`
	// Stored aggregate, present but never trusted.
	RatingAverage float64   `bson:"ratingAverage"`
	CreatedAt     time.Time `bson:"createdAt"`
}

// Rating is embedded in its product.
type Rating struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    primitive.ObjectID `bson:"userId"`
	Stars     int                `bson:"stars"`
	Comment   string             `bson:"comment"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// Transaction is a legacy general-ledger entry.
type Transaction struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    primitive.ObjectID `bson:"userId"`
	Type      string             `bson:"type"`
	Amount    Amount             `bson:"amount"`
	Status    string             `bson:"status"`
	Reference string             `bson:"reference"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// Subscription carries the legacy numeric plan code. Migration converts
// every plan into a lifetime-active subscription (one-time grandfathering).
type Subscription struct {
	ID        primitive.ObjectID `bson:"_id"`
	UserID    primitive.ObjectID `bson:"userId"`
	Plan      int                `bson:"plan"`
	Amount    Amount             `bson:"amount"`
	ExpiresAt time.Time          `bson:"expiresAt"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// Referral is one referral edge between two users.
type Referral struct {
	ID         primitive.ObjectID `bson:"_id"`
	ReferrerID primitive.ObjectID `bson:"referrerId"`
	ReferredID primitive.ObjectID `bson:"referredId"`
	Level      int                `bson:"level"`
	Archived   bool               `bson:"archived"`
	CreatedAt  time.Time          `bson:"createdAt"`
}

// Partner is a legacy partner account. Balance is present but never
// trusted; totals are recomputed from ledger entries.
type Partner struct {
	ID          primitive.ObjectID `bson:"_id"`
	UserID      primitive.ObjectID `bson:"userId"`
	Pack        string             `bson:"pack"`
	Active      bool               `bson:"active"`
	Balance     Amount             `bson:"balance"`
	ActivatedAt time.Time          `bson:"activatedAt"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

// PartnerTransaction is one legacy commission ledger entry. Amount is
// present but recomputed from the pack-tier percentage table during
// migration.
type PartnerTransaction struct {
	ID               primitive.ObjectID `bson:"_id"`
	PartnerID        primitive.ObjectID `bson:"partnerId"`
	SubscriptionType string             `bson:"subscriptionType"`
	Amount           Amount             `bson:"amount"`
	Label            string             `bson:"label"`
	CreatedAt        time.Time          `bson:"createdAt"`
}
