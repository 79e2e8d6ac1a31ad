package transform

import (
	"sort"
	"strings"

	"github.com/kwatalab/bsm/internal/types"
)

// dialingCodes maps ISO country codes to international dialing codes for
// the markets the legacy application served. Longest-prefix matching below
// depends only on this table.
var dialingCodes = map[string]string{
	"CM": "237", // Cameroon
	"CI": "225", // Côte d'Ivoire
	"SN": "221", // Senegal
	"BJ": "229", // Benin
	"TG": "228", // Togo
	"BF": "226", // Burkina Faso
	"ML": "223", // Mali
	"NE": "227", // Niger
	"GN": "224", // Guinea
	"GA": "241", // Gabon
	"CG": "242", // Congo
	"CD": "243", // DR Congo
	"TD": "235", // Chad
	"CF": "236", // Central African Republic
	"GQ": "240", // Equatorial Guinea
	"NG": "234", // Nigeria
	"GH": "233", // Ghana
	"KE": "254", // Kenya
	"RW": "250", // Rwanda
	"TZ": "255", // Tanzania
	"UG": "256", // Uganda
	"ZA": "27",  // South Africa
	"MA": "212", // Morocco
	"DZ": "213", // Algeria
	"TN": "216", // Tunisia
	"EG": "20",  // Egypt
	"FR": "33",  // France
	"BE": "32",  // Belgium
	"GB": "44",  // United Kingdom
	"DE": "49",  // Germany
	"US": "1",   // United States
}

// prefixOrder is every dialing code sorted longest-first so prefix matching
// is longest-wins without backtracking.
var prefixOrder = func() []string {
	codes := make([]string, 0, len(dialingCodes))
	seen := make(map[string]bool)
	for _, code := range dialingCodes {
		if !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	sort.Slice(codes, func(i, j int) bool {
		if len(codes[i]) != len(codes[j]) {
			return len(codes[i]) > len(codes[j])
		}
		return codes[i] < codes[j]
	})
	return codes
}()

// countryByCode inverts dialingCodes; where two countries share a code the
// alphabetically first wins, which is stable across runs.
var countryByCode = func() map[string]string {
	m := make(map[string]string)
	for country, code := range dialingCodes {
		if cur, ok := m[code]; !ok || country < cur {
			m[code] = country
		}
	}
	return m
}()

// DialingCode returns the dialing code for an ISO country code, or "".
func DialingCode(country string) string {
	return dialingCodes[strings.ToUpper(strings.TrimSpace(country))]
}

// KnownCountry reports whether the explicit country code is recognized.
func KnownCountry(country string) bool {
	return DialingCode(country) != ""
}

// inferCountry matches the longest known dialing-code prefix against a
// cleaned (digits-only) number. Returns "" when nothing matches.
func inferCountry(digits string) string {
	if digits == "" {
		return ""
	}
	for _, code := range prefixOrder {
		if strings.HasPrefix(digits, code) {
			return countryByCode[code]
		}
	}
	return ""
}

// ResolveCountry picks a user's country: the explicit code when it is
// recognized, otherwise inference from the cleaned phone number, then from
// the cleaned mobile-money number, and finally the unresolved sentinel.
func ResolveCountry(explicit, phoneDigits, momoDigits string) string {
	if KnownCountry(explicit) {
		return strings.ToUpper(strings.TrimSpace(explicit))
	}
	if c := inferCountry(phoneDigits); c != "" {
		return c
	}
	if c := inferCountry(momoDigits); c != "" {
		return c
	}
	return types.CountryUnresolved
}
