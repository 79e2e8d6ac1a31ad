package transform

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kwatalab/bsm/internal/legacy"
)

func TestUser(t *testing.T) {
	created := time.Date(2021, 3, 14, 9, 0, 0, 0, time.UTC)

	t.Run("full record", func(t *testing.T) {
		rec := &legacy.User{
			ID:         primitive.NewObjectID(),
			Name:       "  Ama Mbarga ",
			Email:      " Ama.Mbarga@Example.COM ",
			Phone:      "+237 237 612 345 678",
			MomoNumber: "237677001122",
			Country:    "",
			CreatedAt:  created,
		}
		user, skip := User(rec)
		if skip != nil {
			t.Fatalf("unexpected skip: %v", skip)
		}
		if user.LegacyID != rec.ID.Hex() {
			t.Errorf("LegacyID = %q, want %q", user.LegacyID, rec.ID.Hex())
		}
		if user.Name != "Ama Mbarga" {
			t.Errorf("Name = %q", user.Name)
		}
		if user.Email != "ama.mbarga@example.com" {
			t.Errorf("Email = %q", user.Email)
		}
		if user.Country != "CM" {
			t.Errorf("Country = %q, want CM (inferred from phone)", user.Country)
		}
		if user.Phone != "237612345678" {
			t.Errorf("Phone = %q, want doubled code collapsed", user.Phone)
		}
		if user.MomoNumber != "237677001122" {
			t.Errorf("MomoNumber = %q", user.MomoNumber)
		}
		if !user.CreatedAt.Equal(created) {
			t.Errorf("CreatedAt = %v", user.CreatedAt)
		}
	})

	t.Run("missing email skips", func(t *testing.T) {
		rec := &legacy.User{ID: primitive.NewObjectID(), Name: "No Email", Email: "   "}
		user, skip := User(rec)
		if user != nil {
			t.Fatal("expected nil user")
		}
		if skip == nil {
			t.Fatal("expected skip")
		}
		if skip.LegacyID != rec.ID.Hex() {
			t.Errorf("skip.LegacyID = %q, want %q", skip.LegacyID, rec.ID.Hex())
		}
	})

	t.Run("explicit country beats inference", func(t *testing.T) {
		rec := &legacy.User{
			ID:      primitive.NewObjectID(),
			Email:   "x@example.com",
			Phone:   "237612345678",
			Country: "NG",
		}
		user, skip := User(rec)
		if skip != nil {
			t.Fatalf("unexpected skip: %v", skip)
		}
		if user.Country != "NG" {
			t.Errorf("Country = %q, want NG", user.Country)
		}
	})
}
