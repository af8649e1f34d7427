package booking

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/ariefcatur/go-hotel-booking/internal/kv"
)

type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingKV) Set(context.Context, string, string) error        { return f.err }

func sample(id int, date string) Reservation {
	return Reservation{
		ID:           id,
		Name:         "Room 10" + string(rune('0'+id)),
		Description:  "desc",
		Price:        float64(id * 10),
		ReservedAt:   "2024-11-20T10:30:00.000Z",
		SelectedDate: date,
	}
}

func TestLoadEmptyStore(t *testing.T) {
	s := NewStore(kv.NewMemory(), nil)

	got, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", got)
	}
}

func TestLoadMalformedIsEmpty(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{"", "not json", `{"id":1}`, `[{"id":"x"}]`, "null"} {
		m := kv.NewMemory()
		if err := m.Set(ctx, KeyReservations, raw); err != nil {
			t.Fatalf("seed: %v", err)
		}
		got, err := NewStore(m, nil).Load(ctx)
		if err != nil {
			t.Fatalf("load %q: %v", raw, err)
		}
		if len(got) != 0 {
			t.Fatalf("load %q: expected empty, got %#v", raw, got)
		}
	}
}

func TestAppendIsCumulative(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kv.NewMemory(), nil)
	r1, r2 := sample(1, "2024-12-01"), sample(2, "2024-12-02")

	if err := s.Append(ctx, r1); err != nil {
		t.Fatalf("append r1: %v", err)
	}
	if err := s.Append(ctx, r2); err != nil {
		t.Fatalf("append r2: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, []Reservation{r1, r2}) {
		t.Fatalf("expected [r1 r2], got %#v", got)
	}
}

func TestAppendRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kv.NewMemory(), nil)
	r := sample(3, "2025-01-15")
	r.Ref = "3f1c7a6e-0d4b-4a57-9d0e-6d1f0e8b1a2c"

	if err := s.Append(ctx, sample(1, "2024-12-01")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(ctx, r); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if last := got[len(got)-1]; last != r {
		t.Fatalf("expected %#v, got %#v", r, last)
	}
}

func TestAppendOverMalformedStartsFresh(t *testing.T) {
	ctx := context.Background()
	m := kv.NewMemory()
	_ = m.Set(ctx, KeyReservations, "{broken")
	s := NewStore(m, nil)

	if err := s.Append(ctx, sample(1, "2024-12-01")); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, _ := s.Load(ctx)
	if len(got) != 1 {
		t.Fatalf("expected one record, got %d", len(got))
	}
}

func TestRemoveWhereDropsEveryMatchingRoom(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kv.NewMemory(), nil)
	x1, y, x2 := sample(2, "2024-12-01"), sample(3, "2024-12-02"), sample(2, "2024-12-03")
	for _, r := range []Reservation{x1, y, x2} {
		if err := s.Append(ctx, r); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	kept, err := s.RemoveWhere(ctx, func(r Reservation) bool { return r.ID == 2 })
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !reflect.DeepEqual(kept, []Reservation{y}) {
		t.Fatalf("expected only room 3 kept, got %#v", kept)
	}
	got, _ := s.Load(ctx)
	if !reflect.DeepEqual(got, kept) {
		t.Fatalf("store and returned list differ: %#v vs %#v", got, kept)
	}
}

func TestStoreWritesJSONArrayUnderKey(t *testing.T) {
	ctx := context.Background()
	m := kv.NewMemory()
	s := NewStore(m, nil)

	if _, err := s.RemoveWhere(ctx, func(Reservation) bool { return true }); err != nil {
		t.Fatalf("remove: %v", err)
	}
	raw, ok, _ := m.Get(ctx, KeyReservations)
	if !ok || raw != "[]" {
		t.Fatalf("expected empty JSON array, got ok=%v %q", ok, raw)
	}
}

func TestStoreSurfacesSubstrateErrors(t *testing.T) {
	boom := errors.New("connection refused")
	s := NewStore(failingKV{err: boom}, nil)

	if _, err := s.Load(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped substrate error, got %v", err)
	}
	if err := s.Append(context.Background(), sample(1, "2024-12-01")); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped substrate error, got %v", err)
	}
}

// slowKV adds latency to reads so concurrent read-modify-writes overlap.
type slowKV struct {
	*kv.Memory
	delay time.Duration
}

func (s slowKV) Get(ctx context.Context, key string) (string, bool, error) {
	time.Sleep(s.delay)
	return s.Memory.Get(ctx, key)
}

func TestConcurrentAppendsKeepEveryRecord(t *testing.T) {
	ctx := context.Background()
	s := NewStore(slowKV{Memory: kv.NewMemory(), delay: time.Millisecond}, nil)

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := sample(1+i%3, "2024-12-01")
			r.Ref = fmt.Sprintf("ref-%d", i)
			errs <- s.Append(ctx, r)
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != n {
		t.Fatalf("expected %d reservations, got %d", n, len(got))
	}
}

func TestConcurrentAppendAndRemove(t *testing.T) {
	ctx := context.Background()
	s := NewStore(slowKV{Memory: kv.NewMemory(), delay: time.Millisecond}, nil)
	for i := 0; i < 10; i++ {
		if err := s.Append(ctx, sample(2, "2024-12-01")); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Append(ctx, sample(3, "2024-12-02"))
		}()
		go func() {
			defer wg.Done()
			_, _ = s.RemoveWhere(ctx, func(r Reservation) bool { return r.ID == 2 })
		}()
	}
	wg.Wait()

	got, _ := s.Load(ctx)
	if len(got) != 20 {
		t.Fatalf("expected the 20 room 3 bookings to survive, got %d", len(got))
	}
	for _, r := range got {
		if r.ID != 3 {
			t.Fatalf("room 2 booking survived removal: %#v", r)
		}
	}
}

func TestLoadKeepsZonelessISOTimestamps(t *testing.T) {
	ctx := context.Background()
	m := kv.NewMemory()
	seed := `[` +
		`{"id":1,"name":"Room 101","description":"Room with sea view","price":100,"reservedAt":"2024-11-20T10:30:00","selectedDate":"2024-12-01"},` +
		`{"id":2,"name":"Room 102","description":"Room with garden view","price":80,"reservedAt":"2024-11-21T08:00:00.000Z","selectedDate":"2024-12-05"}` +
		`]`
	if err := m.Set(ctx, KeyReservations, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}
	s := NewStore(m, nil)

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || got[0].ReservedAt != "2024-11-20T10:30:00" {
		t.Fatalf("expected both records with raw timestamps, got %#v", got)
	}

	if err := s.Append(ctx, sample(3, "2025-01-10")); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, _ = s.Load(ctx)
	if len(got) != 3 || got[0].ReservedAt != "2024-11-20T10:30:00" || got[2].ID != 3 {
		t.Fatalf("append lost existing records: %#v", got)
	}
}
