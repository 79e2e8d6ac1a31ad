package legacy

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

type amountDoc struct {
	V Amount `bson:"v"`
}

func decodeAmount(t *testing.T, value interface{}) (Amount, error) {
	t.Helper()
	raw, err := bson.Marshal(bson.M{"v": value})
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	var doc amountDoc
	err = bson.Unmarshal(raw, &doc)
	return doc.V, err
}

func TestAmountDecode(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		want    float64
		wantErr bool
	}{
		{"double", 12.5, 12.5, false},
		{"int32", int32(700), 700, false},
		{"int64", int64(15000), 15000, false},
		{"numeric string", "12500", 12500, false},
		{"decimal string", " 99.90 ", 99.9, false},
		{"garbage string", "twelve", 0, true},
		{"empty string", "", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := decodeAmount(t, tt.value)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !a.IsSet() {
				t.Fatal("IsSet = false, want true")
			}
			got, verr := a.Value()
			if (verr != nil) != tt.wantErr {
				t.Fatalf("Value() error = %v, wantErr %v", verr, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Value() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("null leaves amount unset", func(t *testing.T) {
		a, err := decodeAmount(t, nil)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if a.IsSet() {
			t.Error("IsSet = true, want false")
		}
		if _, verr := a.Value(); verr == nil {
			t.Error("Value() on unset amount should error")
		}
	})

	t.Run("unsupported type errors", func(t *testing.T) {
		if _, err := decodeAmount(t, true); err == nil {
			t.Error("expected decode error for bool-typed amount")
		}
	})
}

type textDoc struct {
	V Text `bson:"v"`
}

func TestTextDecode(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  Text
	}{
		{"string", "237612345678", "237612345678"},
		{"int64 phone", int64(237612345678), "237612345678"},
		{"int32", int32(612345), "612345"},
		{"double keeps digits", float64(237612345678), "237612345678"},
		{"null", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := bson.Marshal(bson.M{"v": tt.value})
			if err != nil {
				t.Fatalf("marshal fixture: %v", err)
			}
			var doc textDoc
			if err := bson.Unmarshal(raw, &doc); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if doc.V != tt.want {
				t.Errorf("Text = %q, want %q", doc.V, tt.want)
			}
		})
	}
}
