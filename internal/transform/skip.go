// Package transform maps legacy records onto target records: one pure
// function per target entity type, consulting the identity registry for
// every cross-entity reference. A record that cannot be mapped yields a
// Skip with enough context to re-investigate, never a partial record.
package transform

import (
	"fmt"

	"github.com/kwatalab/bsm/internal/types"
)

// Skip explains why a legacy record was not migrated.
type Skip struct {
	Kind     types.Kind
	LegacyID string
	Reason   string
}

func (s *Skip) String() string {
	return fmt.Sprintf("%s %s: %s", s.Kind, s.LegacyID, s.Reason)
}

func skipf(kind types.Kind, legacyID, format string, args ...interface{}) *Skip {
	return &Skip{Kind: kind, LegacyID: legacyID, Reason: fmt.Sprintf(format, args...)}
}
