package legacy

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Amount is a monetary value as stored by the legacy application: sometimes
// a BSON number, sometimes a numeric string, never normalized. Decoding
// captures the raw variant; Value performs the single explicit parsing step.
type Amount struct {
	set     bool
	numeric bool
	num     float64
	text    string
}

// NumericAmount builds a numeric Amount, for tests and fixtures.
func NumericAmount(v float64) Amount {
	return Amount{set: true, numeric: true, num: v}
}

// TextAmount builds a string-typed Amount, for tests and fixtures.
func TextAmount(s string) Amount {
	return Amount{set: true, text: s}
}

// IsSet reports whether the field was present (and non-null) in the
// legacy document.
func (a Amount) IsSet() bool { return a.set }

// Value returns the parsed amount. A string that does not parse as a finite
// number is an error; callers skip the whole record rather than coerce to
// zero.
func (a Amount) Value() (float64, error) {
	if !a.set {
		return 0, fmt.Errorf("amount missing")
	}
	if a.numeric {
		if math.IsNaN(a.num) || math.IsInf(a.num, 0) {
			return 0, fmt.Errorf("amount not finite: %v", a.num)
		}
		return a.num, nil
	}
	s := strings.TrimSpace(a.text)
	if s == "" {
		return 0, fmt.Errorf("amount empty")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q not numeric", a.text)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("amount %q not finite", a.text)
	}
	return v, nil
}

// UnmarshalBSONValue accepts double, int32, int64 and string encodings.
// Null and undefined leave the Amount unset.
func (a *Amount) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.Double:
		a.set, a.numeric, a.num = true, true, rv.Double()
	case bsontype.Int32:
		a.set, a.numeric, a.num = true, true, float64(rv.Int32())
	case bsontype.Int64:
		a.set, a.numeric, a.num = true, true, float64(rv.Int64())
	case bsontype.String:
		a.set, a.text = true, rv.StringValue()
	case bsontype.Null, bsontype.Undefined:
		// leave unset
	default:
		return fmt.Errorf("amount: unsupported BSON type %s", t)
	}
	return nil
}

// Text is a string field that the legacy store sometimes holds as a number
// (phone numbers saved from numeric inputs). Numeric encodings are
// formatted without an exponent so digit runs survive intact.
type Text string

// UnmarshalBSONValue accepts string, double, int32 and int64 encodings.
func (s *Text) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bsontype.String:
		*s = Text(rv.StringValue())
	case bsontype.Double:
		*s = Text(strconv.FormatFloat(rv.Double(), 'f', -1, 64))
	case bsontype.Int32:
		*s = Text(strconv.FormatInt(int64(rv.Int32()), 10))
	case bsontype.Int64:
		*s = Text(strconv.FormatInt(rv.Int64(), 10))
	case bsontype.Null, bsontype.Undefined:
		*s = ""
	default:
		return fmt.Errorf("text: unsupported BSON type %s", t)
	}
	return nil
}

func (s Text) String() string { return string(s) }
