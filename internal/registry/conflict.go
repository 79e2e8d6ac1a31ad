package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/kwatalab/bsm/internal/store"
	"github.com/kwatalab/bsm/internal/types"
)

// uniqueLookups lists, per kind, the unique fields usable to adopt an
// existing target record after an insert conflict, with getters reading the
// attempted record's value for each field.
var uniqueLookups = map[types.Kind][]struct {
	field string
	value func(types.Record) string
}{
	types.KindUser: {
		{"email", func(r types.Record) string { return r.(*types.User).Email }},
		{"phone", func(r types.Record) string { return r.(*types.User).Phone }},
	},
	types.KindPartner: {
		{"user_id", func(r types.Record) string { return r.(*types.Partner).UserID }},
	},
}

// ResolveConflict handles a uniqueness violation for rec: look up an
// existing target record by the field that collided, then by the record's
// other unique fields. When an existing record is found its id is adopted
// as the mapping for rec's legacy id, so later phases can depend on it.
//
// Returns the adopted id and true on success; "" and false when no existing
// record could be located (the legacy id stays unmapped). Store errors
// other than not-found are returned as-is and abort the run.
func (r *Registry) ResolveConflict(ctx context.Context, target store.Target, rec types.Record, c store.Conflict) (string, bool, error) {
	kind := rec.Kind()

	// Colliding field first, then the record's other unique fields.
	tried := map[string]bool{}
	candidates := []struct{ field, value string }{}
	if c.Field != "" {
		value := c.Value
		if value == "" {
			value = lookupValue(kind, c.Field, rec)
		}
		candidates = append(candidates, struct{ field, value string }{c.Field, value})
		tried[c.Field] = true
	}
	for _, lu := range uniqueLookups[kind] {
		if tried[lu.field] {
			continue
		}
		candidates = append(candidates, struct{ field, value string }{lu.field, lu.value(rec)})
	}

	for _, cand := range candidates {
		if cand.value == "" {
			continue
		}
		id, err := target.FindIDByField(ctx, kind, cand.field, cand.value)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return "", false, fmt.Errorf("conflict lookup %s by %s: %w", kind, cand.field, err)
		}
		if r.Register(kind, rec.LegacyRef(), id) {
			r.adopted[kind]++
		}
		return id, true, nil
	}

	return "", false, nil
}

func lookupValue(kind types.Kind, field string, rec types.Record) string {
	for _, lu := range uniqueLookups[kind] {
		if lu.field == field {
			return lu.value(rec)
		}
	}
	return ""
}
