package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/practice-management/internal"
	"github.com/frahmantamala/practice-management/internal/core/events"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// Record writes e synchronously. Missing client details and actor are taken
// from ctx.
func (s *Service) Record(ctx context.Context, e Entry) error {
	if e.Action == "" {
		return internal.NewValidationFieldError("action", "action is required", internal.ErrCodeValidationFailed)
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}
	enrich(ctx, &e)

	if err := s.repo.Create(ctx, &e); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]Entry, int64, error) {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	entries, total, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activity: %w", err)
	}
	return entries, total, nil
}

// HandleEvent persists activity.recorded events published on the bus.
func (s *Service) HandleEvent(ctx context.Context, ev events.Event) error {
	recorded, ok := ev.(*events.ActivityRecordedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", ev, ev.EventType())
	}
	return s.Record(ctx, fromPayload(recorded.Activity, recorded.OccurredAt()))
}

func (s *Service) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeActivityRecorded, s.HandleEvent)
}

func enrich(ctx context.Context, e *Entry) {
	if e.UserID == nil {
		if id, ok := internal.ActorID(ctx); ok {
			e.UserID = &id
		}
	}
	client := internal.ClientFromContext(ctx)
	if e.IPAddress == "" {
		e.IPAddress = client.IP
	}
	if e.UserAgent == "" {
		e.UserAgent = client.UserAgent
	}
}

// BusRecorder hands entries to the event bus so the caller does not wait on
// the insert.
type BusRecorder struct {
	bus *events.EventBus
	now func() time.Time
}

func NewBusRecorder(bus *events.EventBus) *BusRecorder {
	return &BusRecorder{bus: bus, now: time.Now}
}

func (r *BusRecorder) Record(ctx context.Context, e Entry) error {
	enrich(ctx, &e)
	at := e.Timestamp
	if at.IsZero() {
		at = r.now()
	}
	return r.bus.Publish(ctx, events.NewActivityRecordedEvent(toPayload(e), at))
}
