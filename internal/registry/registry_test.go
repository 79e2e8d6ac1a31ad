package registry

import (
	"testing"

	"github.com/kwatalab/bsm/internal/types"
)

func TestRegisterAndResolve(t *testing.T) {
	reg := New()

	if !reg.Register(types.KindUser, "legacy-1", "target-1") {
		t.Fatal("first Register returned false")
	}
	id, ok := reg.Resolve(types.KindUser, "legacy-1")
	if !ok || id != "target-1" {
		t.Fatalf("Resolve = (%q, %v), want (target-1, true)", id, ok)
	}

	// First mapping wins.
	if reg.Register(types.KindUser, "legacy-1", "target-2") {
		t.Error("duplicate Register returned true")
	}
	if id, _ := reg.Resolve(types.KindUser, "legacy-1"); id != "target-1" {
		t.Errorf("Resolve after duplicate = %q, want target-1", id)
	}

	// Kinds are independent namespaces.
	if _, ok := reg.Resolve(types.KindProduct, "legacy-1"); ok {
		t.Error("Resolve found user mapping under product kind")
	}

	if reg.Register(types.KindUser, "", "target-3") {
		t.Error("Register with empty legacy id returned true")
	}
	if reg.Register(types.KindUser, "legacy-2", "") {
		t.Error("Register with empty target id returned true")
	}

	if got := reg.Count(types.KindUser); got != 1 {
		t.Errorf("Count = %d, want 1", got)
	}
	counts := reg.Counts()
	if counts[types.KindUser] != 1 {
		t.Errorf("Counts[user] = %d, want 1", counts[types.KindUser])
	}
}
