package transform

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kwatalab/bsm/internal/legacy"
	"github.com/kwatalab/bsm/internal/registry"
	"github.com/kwatalab/bsm/internal/types"
)

func TestReferral(t *testing.T) {
	referrer := primitive.NewObjectID()
	referred := primitive.NewObjectID()
	reg := registry.New()
	reg.Register(types.KindUser, referrer.Hex(), "user-a")
	reg.Register(types.KindUser, referred.Hex(), "user-b")

	t.Run("valid edge", func(t *testing.T) {
		rec := &legacy.Referral{
			ID:         primitive.NewObjectID(),
			ReferrerID: referrer,
			ReferredID: referred,
			Level:      2,
		}
		ref, skip := Referral(rec, reg)
		if skip != nil {
			t.Fatalf("unexpected skip: %v", skip)
		}
		if ref.ReferrerID != "user-a" || ref.ReferredID != "user-b" {
			t.Errorf("edge = %q -> %q", ref.ReferrerID, ref.ReferredID)
		}
		if ref.Level != 2 {
			t.Errorf("Level = %d", ref.Level)
		}
	})

	t.Run("self referral skips", func(t *testing.T) {
		rec := &legacy.Referral{ID: primitive.NewObjectID(), ReferrerID: referrer, ReferredID: referrer, Level: 1}
		ref, skip := Referral(rec, reg)
		if ref != nil || skip == nil {
			t.Fatalf("want skip, got ref=%v skip=%v", ref, skip)
		}
	})

	t.Run("level out of range skips", func(t *testing.T) {
		for _, level := range []int{0, 4, -1} {
			rec := &legacy.Referral{ID: primitive.NewObjectID(), ReferrerID: referrer, ReferredID: referred, Level: level}
			if ref, skip := Referral(rec, reg); ref != nil || skip == nil {
				t.Errorf("level %d: want skip", level)
			}
		}
	})

	t.Run("unmigrated endpoint skips", func(t *testing.T) {
		rec := &legacy.Referral{ID: primitive.NewObjectID(), ReferrerID: referrer, ReferredID: primitive.NewObjectID(), Level: 1}
		if ref, skip := Referral(rec, reg); ref != nil || skip == nil {
			t.Fatal("want skip for unmigrated referred user")
		}
	})
}
