package transform

import (
	"fmt"
	"os"
	"strings"

	"github.com/kwatalab/bsm/internal/legacy"
	"github.com/kwatalab/bsm/internal/registry"
	"github.com/kwatalab/bsm/internal/types"
)

// Product maps an embedded legacy product to a top-level record. The
// owning user must already be resolvable; price strings that do not parse
// as finite numbers skip the whole product.
//
// Status inference: approved when the legacy accepted flag was set OR at
// least one image was rewritten from legacy form; the image signal wins
// when both are evaluated.
func Product(rec *legacy.Product, ownerLegacyID string, reg *registry.Registry) (*types.Product, *Skip) {
	legacyID := rec.ID.Hex()

	ownerID, ok := reg.Resolve(types.KindUser, ownerLegacyID)
	if !ok {
		return nil, skipf(types.KindProduct, legacyID, "owner %s not migrated", ownerLegacyID)
	}

	price, err := rec.Price.Value()
	if err != nil {
		return nil, skipf(types.KindProduct, legacyID, "invalid price: %v", err)
	}

	var images []types.Image
	anyMigrated := false
	for _, ref := range rec.Images {
		if strings.TrimSpace(ref) == "" {
			continue
		}
		img, migrated, werr := RewriteImage(ref)
		if werr != nil {
			fmt.Fprintf(os.Stderr, "Warning: product %s: %v\n", legacyID, werr)
		}
		if migrated {
			anyMigrated = true
		}
		images = append(images, img)
	}

	status := types.ProductPending
	if rec.Accepted || anyMigrated {
		status = types.ProductApproved
	}

	return &types.Product{
		LegacyID:    legacyID,
		UserID:      ownerID,
		Title:       strings.TrimSpace(rec.Title),
		Description: rec.Description,
		Price:       price,
		Currency:    rec.Currency,
		Status:      status,
		Images:      images,
		CreatedAt:   rec.CreatedAt,
	}, nil
}
