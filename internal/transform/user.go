package transform

import (
	"strings"

	"github.com/kwatalab/bsm/internal/legacy"
	"github.com/kwatalab/bsm/internal/types"
)

// User maps a legacy user. Email is the only required field; phone and
// mobile-money numbers are normalized and the country is resolved from the
// explicit code or inferred from the numbers.
func User(rec *legacy.User) (*types.User, *Skip) {
	legacyID := rec.ID.Hex()

	email := strings.ToLower(strings.TrimSpace(rec.Email))
	if email == "" {
		return nil, skipf(types.KindUser, legacyID, "missing email")
	}

	phoneDigits := CleanPhone(rec.Phone.String())
	momoDigits := CleanPhone(rec.MomoNumber.String())
	country := ResolveCountry(rec.Country, phoneDigits, momoDigits)

	return &types.User{
		LegacyID:   legacyID,
		Name:       strings.TrimSpace(rec.Name),
		Email:      email,
		Phone:      NormalizePhone(rec.Phone.String(), country),
		MomoNumber: NormalizePhone(rec.MomoNumber.String(), country),
		Country:    country,
		CreatedAt:  rec.CreatedAt,
	}, nil
}
