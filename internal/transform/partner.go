package transform

import (
	"strings"

	"github.com/kwatalab/bsm/internal/commission"
	"github.com/kwatalab/bsm/internal/legacy"
	"github.com/kwatalab/bsm/internal/registry"
	"github.com/kwatalab/bsm/internal/types"
)

// ParsePack normalizes the legacy pack field, which holds either a tier
// name or its numeric code.
func ParsePack(s string) (types.PartnerPack, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "bronze":
		return types.PackBronze, true
	case "2", "silver":
		return types.PackSilver, true
	case "3", "gold":
		return types.PackGold, true
	}
	return "", false
}

// Partner maps a legacy partner. balance is the sum of its recomputed
// ledger entries, supplied by the partner phase; the stored legacy balance
// is never read.
func Partner(rec *legacy.Partner, reg *registry.Registry, balance float64) (*types.Partner, *Skip) {
	legacyID := rec.ID.Hex()

	userID, ok := reg.Resolve(types.KindUser, rec.UserID.Hex())
	if !ok {
		return nil, skipf(types.KindPartner, legacyID, "user %s not migrated", rec.UserID.Hex())
	}
	pack, ok := ParsePack(rec.Pack)
	if !ok {
		return nil, skipf(types.KindPartner, legacyID, "unknown pack %q", rec.Pack)
	}

	activatedAt := rec.ActivatedAt
	if activatedAt.IsZero() {
		activatedAt = rec.CreatedAt
	}

	return &types.Partner{
		LegacyID:    legacyID,
		UserID:      userID,
		Pack:        pack,
		Balance:     balance,
		Active:      rec.Active,
		ActivatedAt: activatedAt,
		CreatedAt:   rec.CreatedAt,
	}, nil
}

// PartnerEntry maps one legacy ledger entry with its amount recomputed
// from the pack-tier percentage table; the stored legacy amount is never
// trusted. Entries with unknown subscription types are skipped.
func PartnerEntry(rec *legacy.PartnerTransaction, pack types.PartnerPack) (*types.PartnerTransaction, *Skip) {
	legacyID := rec.ID.Hex()

	subType, ok := ParseSubscriptionType(rec.SubscriptionType)
	if !ok {
		return nil, skipf(types.KindPartnerTransaction, legacyID, "unknown subscription type %q", rec.SubscriptionType)
	}

	return &types.PartnerTransaction{
		LegacyID:         legacyID,
		SubscriptionType: subType,
		Amount:           commission.Amount(subType, pack),
		Label:            rec.Label,
		CreatedAt:        rec.CreatedAt,
	}, nil
}
