package transform

import (
	"github.com/kwatalab/bsm/internal/legacy"
	"github.com/kwatalab/bsm/internal/registry"
	"github.com/kwatalab/bsm/internal/types"
)

// Rating maps an embedded legacy rating. Both the rated product and the
// rating user must already have mappings; a rating whose rater or product
// never resolved is skipped, never inserted with a missing reference.
func Rating(rec *legacy.Rating, productLegacyID string, reg *registry.Registry) (*types.Rating, *Skip) {
	legacyID := rec.ID.Hex()

	productID, ok := reg.Resolve(types.KindProduct, productLegacyID)
	if !ok {
		return nil, skipf(types.KindRating, legacyID, "product %s not migrated", productLegacyID)
	}
	userID, ok := reg.Resolve(types.KindUser, rec.UserID.Hex())
	if !ok {
		return nil, skipf(types.KindRating, legacyID, "rater %s not migrated", rec.UserID.Hex())
	}

	return &types.Rating{
		LegacyID:  legacyID,
		ProductID: productID,
		UserID:    userID,
		Stars:     rec.Stars,
		Comment:   rec.Comment,
		CreatedAt: rec.CreatedAt,
	}, nil
}
