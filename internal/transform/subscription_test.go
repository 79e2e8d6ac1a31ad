package transform

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kwatalab/bsm/internal/legacy"
	"github.com/kwatalab/bsm/internal/registry"
	"github.com/kwatalab/bsm/internal/types"
)

func TestSubscription(t *testing.T) {
	user := primitive.NewObjectID()
	reg := registry.New()
	reg.Register(types.KindUser, user.Hex(), "user-1")

	tests := []struct {
		name     string
		plan     int
		wantType types.SubscriptionType
		wantSkip bool
	}{
		{"monthly", 1, types.SubMonthly, false},
		{"quarterly", 2, types.SubQuarterly, false},
		{"yearly", 3, types.SubYearly, false},
		{"lifetime", 4, types.SubLifetime, false},
		{"unknown plan code", 9, "", true},
		{"zero plan code", 0, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &legacy.Subscription{
				ID:        primitive.NewObjectID(),
				UserID:    user,
				Plan:      tt.plan,
				ExpiresAt: time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
				CreatedAt: time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
			}
			sub, skip := Subscription(rec, reg)
			if tt.wantSkip {
				if skip == nil {
					t.Fatal("expected skip")
				}
				return
			}
			if skip != nil {
				t.Fatalf("unexpected skip: %v", skip)
			}
			if sub.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", sub.Type, tt.wantType)
			}
			if sub.Status != "active" {
				t.Errorf("Status = %q, want active", sub.Status)
			}
			if sub.ExpiresAt != nil {
				t.Errorf("ExpiresAt = %v, want nil (grandfathered)", sub.ExpiresAt)
			}
		})
	}

	t.Run("unmigrated user skips", func(t *testing.T) {
		rec := &legacy.Subscription{ID: primitive.NewObjectID(), UserID: primitive.NewObjectID(), Plan: 1}
		sub, skip := Subscription(rec, reg)
		if sub != nil || skip == nil {
			t.Fatalf("want skip, got sub=%v skip=%v", sub, skip)
		}
	})
}

func TestParseSubscriptionType(t *testing.T) {
	tests := []struct {
		in   string
		want types.SubscriptionType
		ok   bool
	}{
		{"monthly", types.SubMonthly, true},
		{"  Yearly ", types.SubYearly, true},
		{"LIFETIME", types.SubLifetime, true},
		{"weekly", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseSubscriptionType(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseSubscriptionType(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
