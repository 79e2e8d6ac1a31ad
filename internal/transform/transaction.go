package transform

import (
	"strings"

	"github.com/kwatalab/bsm/internal/legacy"
	"github.com/kwatalab/bsm/internal/registry"
	"github.com/kwatalab/bsm/internal/types"
)

// Transaction maps a legacy general-ledger entry. Unparseable amounts and
// unmapped users skip the record.
func Transaction(rec *legacy.Transaction, reg *registry.Registry) (*types.Transaction, *Skip) {
	legacyID := rec.ID.Hex()

	userID, ok := reg.Resolve(types.KindUser, rec.UserID.Hex())
	if !ok {
		return nil, skipf(types.KindTransaction, legacyID, "user %s not migrated", rec.UserID.Hex())
	}

	amount, err := rec.Amount.Value()
	if err != nil {
		return nil, skipf(types.KindTransaction, legacyID, "invalid amount: %v", err)
	}

	status := strings.ToLower(strings.TrimSpace(rec.Status))
	if status == "" {
		status = "completed"
	}

	return &types.Transaction{
		LegacyID:  legacyID,
		UserID:    userID,
		Type:      types.TransactionType(strings.ToLower(strings.TrimSpace(rec.Type))),
		Amount:    amount,
		Status:    status,
		Reference: rec.Reference,
		CreatedAt: rec.CreatedAt,
	}, nil
}
