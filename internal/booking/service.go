package booking

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	kafkax "github.com/ariefcatur/go-hotel-booking/internal/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Service runs the booking and cancellation flows on top of Store.
// Producers are optional; a nil producer disables that event.
type Service struct {
	Store             *Store
	ProducerCreated   publisher
	ProducerCancelled publisher
	ServiceName       string
	Log               *zap.Logger
	Now               func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Service) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

func (s *Service) List(ctx context.Context) ([]Reservation, error) {
	return s.Store.Load(ctx)
}

// BookRoomID looks the room up in the catalog and books it.
func (s *Service) BookRoomID(ctx context.Context, roomID int, selectedDate string) (Reservation, string, error) {
	room, ok := FindRoom(roomID)
	if !ok {
		return Reservation{}, "", fmt.Errorf("room %d: %w", roomID, ErrRoomNotFound)
	}
	return s.Book(ctx, room, selectedDate)
}

// Book appends a reservation of room on selectedDate and returns it with
// the confirmation message. A blank date yields an *InputError and leaves
// the store untouched.
func (s *Service) Book(ctx context.Context, room Room, selectedDate string) (Reservation, string, error) {
	selectedDate = strings.TrimSpace(selectedDate)

	inputErr := newInputError()
	if room.ID == 0 {
		inputErr.add("room", "select a room")
	}
	if selectedDate == "" {
		inputErr.add("selectedDate", MsgSelectDate)
	}
	if !inputErr.empty() {
		return Reservation{}, "", inputErr
	}

	r := Reservation{
		ID:           room.ID,
		Name:         room.Name,
		Description:  room.Description,
		Price:        room.Price,
		ReservedAt:   s.now().Format(TimestampLayout),
		SelectedDate: selectedDate,
		Ref:          uuid.NewString(),
	}
	if err := s.Store.Append(ctx, r); err != nil {
		return Reservation{}, "", fmt.Errorf("append reservation: %w", err)
	}

	msg := fmt.Sprintf("Reservation made for: %s on date: %s", room.Name, selectedDate)
	s.log().Info("reservation created",
		zap.Int("room_id", r.ID), zap.String("ref", r.Ref), zap.String("selected_date", r.SelectedDate))

	s.publish(ctx, s.ProducerCreated, EventReservationCreated, r.ID,
		ReservationCreatedPayload{Reservation: r, Message: msg})

	return r, msg, nil
}

// Cancel removes every reservation of the room and returns the list left in
// the store, which callers should use to replace any cached copy.
func (s *Service) Cancel(ctx context.Context, roomID int) ([]Reservation, error) {
	removed := 0
	kept, err := s.Store.RemoveWhere(ctx, func(r Reservation) bool {
		if r.ID == roomID {
			removed++
			return true
		}
		return false
	})
	if err != nil {
		return nil, fmt.Errorf("cancel room %d: %w", roomID, err)
	}

	s.log().Info("reservations cancelled", zap.Int("room_id", roomID), zap.Int("removed", removed))
	s.publish(ctx, s.ProducerCancelled, EventReservationCancelled, roomID,
		ReservationCancelledPayload{RoomID: roomID, Removed: removed})

	return kept, nil
}

// CancelRef removes the single booking identified by ref.
func (s *Service) CancelRef(ctx context.Context, ref string) ([]Reservation, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		inputErr := newInputError()
		inputErr.add("ref", "provide a reservation ref")
		return nil, inputErr
	}

	removed, roomID := 0, 0
	kept, err := s.Store.RemoveWhere(ctx, func(r Reservation) bool {
		if r.Ref == ref {
			removed++
			roomID = r.ID
			return true
		}
		return false
	})
	if err != nil {
		return nil, fmt.Errorf("cancel ref %s: %w", ref, err)
	}

	s.log().Info("reservation cancelled", zap.String("ref", ref), zap.Int("removed", removed))
	s.publish(ctx, s.ProducerCancelled, EventReservationCancelled, roomID,
		ReservationCancelledPayload{RoomID: roomID, Ref: ref, Removed: removed})

	return kept, nil
}

func (s *Service) publish(ctx context.Context, p publisher, eventType string, roomID int, payload any) {
	if p == nil {
		return
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    s.now(),
		Producer:      s.ServiceName,
		TraceID:       TraceIDFromContext(ctx),
		CorrelationID: strconv.Itoa(roomID),
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(PartitionKey(roomID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
