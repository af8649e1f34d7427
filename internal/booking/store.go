package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// KeyReservations is the single key holding the JSON array of reservations.
const KeyReservations = "reservations"

// Storage is the key-value substrate the store persists to.
type Storage interface {
	// Get returns ok=false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Store reads and replaces the reservation list under KeyReservations.
// Each mutation is a full read followed by a full overwrite, serialized
// within one Store. Separate processes sharing a substrate can still lose
// each other's updates.
type Store struct {
	mu sync.Mutex
	kv Storage
	l  *zap.Logger
}

func NewStore(kv Storage, l *zap.Logger) *Store {
	if l == nil {
		l = zap.NewNop()
	}
	return &Store{kv: kv, l: l}
}

// Load returns the stored reservations. A missing key or a payload that is
// not a JSON array of reservations yields an empty list, not an error; only
// substrate failures are returned.
func (s *Store) Load(ctx context.Context) ([]Reservation, error) {
	raw, ok, err := s.kv.Get(ctx, KeyReservations)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", KeyReservations, err)
	}
	if !ok {
		return []Reservation{}, nil
	}

	var out []Reservation
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.l.Warn("discarding malformed reservations payload",
			zap.String("key", KeyReservations), zap.Int("bytes", len(raw)), zap.Error(err))
		return []Reservation{}, nil
	}
	if out == nil {
		out = []Reservation{}
	}
	return out, nil
}

func (s *Store) Append(ctx context.Context, r Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.Load(ctx)
	if err != nil {
		return err
	}
	return s.save(ctx, append(cur, r))
}

// RemoveWhere drops every record matching pred and returns what was written.
func (s *Store) RemoveWhere(ctx context.Context, pred func(Reservation) bool) ([]Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	kept := make([]Reservation, 0, len(cur))
	for _, r := range cur {
		if !pred(r) {
			kept = append(kept, r)
		}
	}
	if err := s.save(ctx, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

func (s *Store) save(ctx context.Context, list []Reservation) error {
	b, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("marshal reservations: %w", err)
	}
	if err := s.kv.Set(ctx, KeyReservations, string(b)); err != nil {
		return fmt.Errorf("set %s: %w", KeyReservations, err)
	}
	return nil
}
