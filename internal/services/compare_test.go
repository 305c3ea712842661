package services_test

import (
	"errors"
	"testing"

	"aurelia/internal/repos"
	"aurelia/internal/services"
)

func TestCompareListCapsAtThree(t *testing.T) {
	db := memdb(t)
	svc := services.NewCompareService(repos.NewCompareRepo(db))
	sid := "sess-compare"

	for _, pid := range []string{"1", "2", "3"} {
		if err := svc.Add(sid, pid); err != nil {
			t.Fatalf("add %s: %v", pid, err)
		}
	}

	// Re-adding a member is idempotent, not an error and not a fourth slot.
	if err := svc.Add(sid, "2"); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	if err := svc.Add(sid, "4"); !errors.Is(err, services.ErrCompareFull) {
		t.Fatalf("want ErrCompareFull, got %v", err)
	}

	rows, err := svc.List(sid)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rejection must not disturb the list, got %d rows", len(rows))
	}
	got := map[string]bool{}
	for _, r := range rows {
		got[r.ProductID] = true
	}
	for _, pid := range []string{"1", "2", "3"} {
		if !got[pid] {
			t.Fatalf("member %s missing after rejected add: %v", pid, got)
		}
	}

	// Freeing a slot makes the next add succeed.
	if err := svc.Remove(sid, "1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Add(sid, "4"); err != nil {
		t.Fatalf("add after remove: %v", err)
	}
}

func TestWishlistToggle(t *testing.T) {
	db := memdb(t)
	svc := services.NewWishlistService(repos.NewWishlistRepo(db))
	sid := "sess-wish"

	saved, err := svc.Toggle(sid, "6")
	if err != nil || !saved {
		t.Fatalf("first toggle should save: %v %v", saved, err)
	}
	saved, err = svc.Toggle(sid, "6")
	if err != nil || saved {
		t.Fatalf("second toggle should unsave: %v %v", saved, err)
	}
	rows, err := svc.List(sid)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Fatalf("want empty wishlist, got %d rows", len(rows))
	}
}
