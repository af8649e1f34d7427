package notifier

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-hotel-booking/internal/booking"
	kafkax "github.com/ariefcatur/go-hotel-booking/internal/kafka"
	"go.uber.org/zap"
)

type deduper interface {
	Seen(ctx context.Context, service, id string) (bool, error)
	Mark(ctx context.Context, service, id string) error
}

// Service turns reservation events into guest notifications. Delivery is a
// structured log line; the message text matches the booking confirmation.
type Service struct {
	Dedup       deduper
	Log         *zap.Logger
	ServiceName string
}

// HandleReservationEvent notifies once per event id. The id is marked only
// after a successful notification so a failed event is redelivered.
func (s *Service) HandleReservationEvent(ctx context.Context, m kafkax.Message) error {
	env, err := kafkax.Decode[booking.Envelope](m.Value)
	if err != nil {
		return err
	}

	if s.Dedup != nil {
		seen, err := s.Dedup.Seen(ctx, s.ServiceName, env.EventID)
		if err != nil {
			s.Log.Warn("dedup check failed, processing anyway", zap.String("event_id", env.EventID), zap.Error(err))
		} else if seen {
			return nil
		}
	}

	if err := s.notify(env); err != nil {
		return err
	}

	if s.Dedup != nil {
		if err := s.Dedup.Mark(ctx, s.ServiceName, env.EventID); err != nil {
			s.Log.Warn("dedup mark failed", zap.String("event_id", env.EventID), zap.Error(err))
		}
	}
	return nil
}

func (s *Service) notify(env booking.Envelope) error {
	l := s.Log.With(zap.String("event_id", env.EventID), zap.String("trace_id", env.TraceID))
	switch env.EventType {
	case booking.EventReservationCreated:
		p, err := kafkax.Decode[booking.ReservationCreatedPayload](env.Payload)
		if err != nil {
			return fmt.Errorf("event %s: %w", env.EventID, err)
		}
		l.Info(p.Message,
			zap.Int("room_id", p.Reservation.ID),
			zap.String("ref", p.Reservation.Ref),
			zap.String("selected_date", p.Reservation.SelectedDate))
	case booking.EventReservationCancelled:
		p, err := kafkax.Decode[booking.ReservationCancelledPayload](env.Payload)
		if err != nil {
			return fmt.Errorf("event %s: %w", env.EventID, err)
		}
		l.Info("Reservation cancelled",
			zap.Int("room_id", p.RoomID), zap.String("ref", p.Ref), zap.Int("removed", p.Removed))
	default:
		l.Debug("ignoring event", zap.String("event_type", env.EventType))
	}
	return nil
}
