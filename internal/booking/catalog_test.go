package booking

import (
	"testing"
	"time"
)

func TestCatalog(t *testing.T) {
	rs := Rooms()
	if len(rs) != 3 {
		t.Fatalf("expected 3 rooms, got %d", len(rs))
	}
	rs[0].Name = "mutated"
	if r, _ := FindRoom(1); r.Name != "Room 101" {
		t.Fatalf("catalog was mutated through Rooms(): %q", r.Name)
	}
	if r, ok := FindRoom(2); !ok || r.Price != 80 {
		t.Fatalf("unexpected room 2: %#v", r)
	}
	if _, ok := FindRoom(4); ok {
		t.Fatal("room 4 should not exist")
	}
}

func TestImageFor(t *testing.T) {
	if ImageFor(3) == "" {
		t.Fatal("expected image for room 3")
	}
	if ImageFor(42) != "" {
		t.Fatal("expected empty image for unknown room")
	}
}

func TestMinDate(t *testing.T) {
	now := time.Date(2024, 3, 7, 23, 59, 0, 0, time.UTC)
	if got := MinDate(now); got != "2024-03-07" {
		t.Fatalf("expected 2024-03-07, got %q", got)
	}
}
