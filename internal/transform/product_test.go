package transform

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kwatalab/bsm/internal/legacy"
	"github.com/kwatalab/bsm/internal/registry"
	"github.com/kwatalab/bsm/internal/types"
)

func TestProduct(t *testing.T) {
	owner := primitive.NewObjectID()
	reg := registry.New()
	reg.Register(types.KindUser, owner.Hex(), "user-1")

	t.Run("maps owner and price", func(t *testing.T) {
		rec := &legacy.Product{
			ID:       primitive.NewObjectID(),
			Title:    " Solar Lamp ",
			Price:    legacy.TextAmount("12500"),
			Currency: "XAF",
			Accepted: true,
		}
		p, skip := Product(rec, owner.Hex(), reg)
		if skip != nil {
			t.Fatalf("unexpected skip: %v", skip)
		}
		if p.UserID != "user-1" {
			t.Errorf("UserID = %q, want user-1", p.UserID)
		}
		if p.Title != "Solar Lamp" {
			t.Errorf("Title = %q", p.Title)
		}
		if p.Price != 12500 {
			t.Errorf("Price = %v, want 12500", p.Price)
		}
		if p.Status != types.ProductApproved {
			t.Errorf("Status = %q, want approved", p.Status)
		}
	})

	t.Run("unmigrated owner skips", func(t *testing.T) {
		rec := &legacy.Product{ID: primitive.NewObjectID(), Price: legacy.NumericAmount(10)}
		p, skip := Product(rec, primitive.NewObjectID().Hex(), reg)
		if p != nil || skip == nil {
			t.Fatalf("want skip, got product=%v skip=%v", p, skip)
		}
	})

	t.Run("unparseable price skips", func(t *testing.T) {
		rec := &legacy.Product{ID: primitive.NewObjectID(), Price: legacy.TextAmount("twelve")}
		p, skip := Product(rec, owner.Hex(), reg)
		if p != nil || skip == nil {
			t.Fatalf("want skip, got product=%v skip=%v", p, skip)
		}
	})

	t.Run("legacy image rewrite marks approved", func(t *testing.T) {
		rec := &legacy.Product{
			ID:       primitive.NewObjectID(),
			Price:    legacy.NumericAmount(500),
			Accepted: false,
			Images: []string{
				"https://files-svc.onrender.com/download?id=img9",
				"https://cdn.example.com/other.png",
			},
		}
		p, skip := Product(rec, owner.Hex(), reg)
		if skip != nil {
			t.Fatalf("unexpected skip: %v", skip)
		}
		if p.Status != types.ProductApproved {
			t.Errorf("Status = %q, want approved after image migration", p.Status)
		}
		if len(p.Images) != 2 {
			t.Fatalf("Images = %d, want 2", len(p.Images))
		}
		if p.Images[0].URL != "/settings/files/img9" || p.Images[0].FileID != "img9" {
			t.Errorf("Images[0] = %+v", p.Images[0])
		}
		if p.Images[1].URL != "https://cdn.example.com/other.png" {
			t.Errorf("Images[1] = %+v", p.Images[1])
		}
	})

	t.Run("not accepted and no legacy images stays pending", func(t *testing.T) {
		rec := &legacy.Product{
			ID:     primitive.NewObjectID(),
			Price:  legacy.NumericAmount(500),
			Images: []string{"https://cdn.example.com/a.png"},
		}
		p, skip := Product(rec, owner.Hex(), reg)
		if skip != nil {
			t.Fatalf("unexpected skip: %v", skip)
		}
		if p.Status != types.ProductPending {
			t.Errorf("Status = %q, want pending", p.Status)
		}
	})
}
