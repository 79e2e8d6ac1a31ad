package transform

import "strings"

// CleanPhone strips everything but digits.
func CleanPhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizePhone cleans a number and collapses a doubled leading dialing
// code. Legacy clients frequently prepended the country code to numbers
// that already carried it, so "237237612345678" with country CM becomes
// "237612345678". Anything else is left as cleaned digits.
func NormalizePhone(raw, country string) string {
	digits := CleanPhone(raw)
	code := DialingCode(country)
	if code != "" && strings.HasPrefix(digits, code+code) {
		return digits[len(code):]
	}
	return digits
}
