package transform

import (
	"github.com/kwatalab/bsm/internal/legacy"
	"github.com/kwatalab/bsm/internal/registry"
	"github.com/kwatalab/bsm/internal/types"
)

// Referral maps a referral edge. Self-referrals and levels outside 1..3
// are data-quality artifacts of the legacy store and are skipped.
func Referral(rec *legacy.Referral, reg *registry.Registry) (*types.Referral, *Skip) {
	legacyID := rec.ID.Hex()

	if rec.ReferrerID == rec.ReferredID {
		return nil, skipf(types.KindReferral, legacyID, "self-referral")
	}
	if rec.Level < 1 || rec.Level > 3 {
		return nil, skipf(types.KindReferral, legacyID, "level %d out of range", rec.Level)
	}

	referrerID, ok := reg.Resolve(types.KindUser, rec.ReferrerID.Hex())
	if !ok {
		return nil, skipf(types.KindReferral, legacyID, "referrer %s not migrated", rec.ReferrerID.Hex())
	}
	referredID, ok := reg.Resolve(types.KindUser, rec.ReferredID.Hex())
	if !ok {
		return nil, skipf(types.KindReferral, legacyID, "referred user %s not migrated", rec.ReferredID.Hex())
	}

	return &types.Referral{
		LegacyID:   legacyID,
		ReferrerID: referrerID,
		ReferredID: referredID,
		Level:      rec.Level,
		Archived:   rec.Archived,
		CreatedAt:  rec.CreatedAt,
	}, nil
}
