package transform

import (
	"strings"

	"github.com/kwatalab/bsm/internal/legacy"
	"github.com/kwatalab/bsm/internal/registry"
	"github.com/kwatalab/bsm/internal/types"
)

// planTypes maps the legacy numeric plan codes onto subscription types.
var planTypes = map[int]types.SubscriptionType{
	1: types.SubMonthly,
	2: types.SubQuarterly,
	3: types.SubYearly,
	4: types.SubLifetime,
}

// ParseSubscriptionType normalizes a subscription-type string, for
// collections that store the name rather than the plan code.
func ParseSubscriptionType(s string) (types.SubscriptionType, bool) {
	switch types.SubscriptionType(strings.ToLower(strings.TrimSpace(s))) {
	case types.SubMonthly:
		return types.SubMonthly, true
	case types.SubQuarterly:
		return types.SubQuarterly, true
	case types.SubYearly:
		return types.SubYearly, true
	case types.SubLifetime:
		return types.SubLifetime, true
	}
	return "", false
}

// Subscription maps a legacy subscription. Every migrated subscription
// becomes lifetime-active regardless of its stored expiration: a one-time
// grandfathering decision for accounts that predate the store split, not
// a defect.
func Subscription(rec *legacy.Subscription, reg *registry.Registry) (*types.Subscription, *Skip) {
	legacyID := rec.ID.Hex()

	userID, ok := reg.Resolve(types.KindUser, rec.UserID.Hex())
	if !ok {
		return nil, skipf(types.KindSubscription, legacyID, "user %s not migrated", rec.UserID.Hex())
	}

	subType, ok := planTypes[rec.Plan]
	if !ok {
		return nil, skipf(types.KindSubscription, legacyID, "unknown plan code %d", rec.Plan)
	}

	return &types.Subscription{
		LegacyID:  legacyID,
		UserID:    userID,
		Type:      subType,
		Status:    "active",
		StartsAt:  rec.CreatedAt,
		ExpiresAt: nil, // grandfathered: never expires
		CreatedAt: rec.CreatedAt,
	}, nil
}
