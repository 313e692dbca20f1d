package workbench

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/docroute/pkg/lifecycle"
)

// Sessions owns the live workbench sessions and expires idle ones.
type Sessions struct {
	deps   Deps
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu    sync.RWMutex
	items map[uuid.UUID]*Workbench
}

// NewSessions creates a session manager. Sessions inactive for longer than
// ttl are removed by Sweep.
func NewSessions(deps Deps, ttl time.Duration) *Sessions {
	deps.Logger = deps.Logger.With("system", "workbench")
	return &Sessions{
		deps:   deps,
		ttl:    ttl,
		logger: deps.Logger,
		now:    time.Now,
		items:  make(map[uuid.UUID]*Workbench),
	}
}

// Handler returns the HTTP handler for session endpoints.
func (s *Sessions) Handler(maxUploadSize int64) *Handler {
	return NewHandler(s, s.logger, maxUploadSize)
}

// Create opens a new empty session.
func (s *Sessions) Create() *Workbench {
	wb := newWorkbench(uuid.New(), s.deps, s.now)

	s.mu.Lock()
	s.items[wb.ID()] = wb
	s.mu.Unlock()

	s.logger.Info("session created", "session", wb.ID())
	return wb
}

// Get returns the session with id.
func (s *Sessions) Get(id uuid.UUID) (*Workbench, error) {
	s.mu.RLock()
	wb, ok := s.items[id]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	return wb, nil
}

// Close removes a session. In-flight operations complete against the
// detached session and their results are dropped.
func (s *Sessions) Close(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.items, id)
	s.logger.Info("session closed", "session", id)
	return nil
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Sweep removes sessions idle past the TTL and returns how many were removed.
// Sessions with a batch or send outstanding are kept.
func (s *Sessions) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, wb := range s.items {
		if wb.idleSince(cutoff) {
			delete(s.items, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info("expired idle sessions", "removed", removed, "remaining", len(s.items))
	}
	return removed
}

// Start runs Sweep every interval until the coordinator shuts down.
func (s *Sessions) Start(lc *lifecycle.Coordinator, interval time.Duration) {
	ticker := time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-lc.Context().Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()

	lc.OnShutdown(func() {
		ticker.Stop()
		s.logger.Info("session janitor stopped", "sessions", s.Len())
	})
}
