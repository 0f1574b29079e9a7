package dth22

import (
	"context"
	"sync"

	"github.com/nerrad567/apiconsole/internal/infrastructure/logging"
)

// Listener receives events after a write commits. Listeners run
// synchronously on the writer's goroutine and must not block.
type Listener func(ctx context.Context, ev Event)

// Service is the entry point for reading operations. It wraps a Repository,
// logs writes and fans events out to registered listeners.
//
// Thread Safety: safe for concurrent use.
type Service struct {
	repo   Repository
	logger *logging.Logger

	mu        sync.RWMutex
	listeners []Listener
}

// NewService creates a Service over repo.
func NewService(repo Repository, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{repo: repo, logger: logger.With("component", "dth22")}
}

// OnEvent registers a listener for created and updated events.
func (s *Service) OnEvent(l Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

// List returns all readings, newest first.
func (s *Service) List(ctx context.Context) ([]Reading, error) {
	return s.repo.List(ctx)
}

// Get returns one reading.
func (s *Service) Get(ctx context.Context, id int64) (*Reading, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores a reading and emits EventCreated.
//
// Parameters:
//   - ctx: Context for cancellation
//   - in: Values to store
//   - source: SourceAPI or SourceMQTT, recorded on the event
//
// Returns:
//   - *Reading: The stored reading
//   - error: From the repository
func (s *Service) Create(ctx context.Context, in NewReading, source string) (*Reading, error) {
	reading, err := s.repo.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	s.logger.Info("reading created",
		"id", reading.ID,
		"unit_name", reading.UnitName,
		"source", source,
	)
	s.emit(ctx, Event{Type: EventCreated, Source: source, Reading: *reading})
	return reading, nil
}

// Update applies a partial update and emits EventUpdated.
func (s *Service) Update(ctx context.Context, id int64, patch Patch, source string) (*Reading, error) {
	reading, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("reading updated", "id", reading.ID, "source", source)
	s.emit(ctx, Event{Type: EventUpdated, Source: source, Reading: *reading})
	return reading, nil
}

func (s *Service) emit(ctx context.Context, ev Event) {
	s.mu.RLock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		s.dispatch(ctx, l, ev)
	}
}

func (s *Service) dispatch(ctx context.Context, l Listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("event listener panic recovered",
				"event", string(ev.Type),
				"panic", r,
			)
		}
	}()
	l(ctx, ev)
}
