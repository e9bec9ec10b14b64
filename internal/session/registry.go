package session

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/readalong/internal/domain"
)

// Registry defaults.
const (
	DefaultIdleTTL       = 2 * time.Hour
	DefaultSweepInterval = 5 * time.Minute
	DefaultMaxSessions   = 1000
)

// Factory builds a new session for id.
type Factory func(id string) *Session

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	IdleTTL     time.Duration
	MaxSessions int
	Now         func() time.Time
}

// Registry keeps the live sessions in memory and expires idle ones.
type Registry struct {
	log         *slog.Logger
	factory     Factory
	idleTTL     time.Duration
	maxSessions int
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session

	sweeping atomic.Bool
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewRegistry creates an empty registry. Call StartSweeper to expire idle
// sessions in the background and Stop on shutdown.
func NewRegistry(logger *slog.Logger, factory Factory, opts RegistryOptions) *Registry {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{
		log:         logger.With("service", "session_registry"),
		factory:     factory,
		idleTTL:     opts.IdleTTL,
		maxSessions: opts.MaxSessions,
		now:         opts.Now,
		sessions:    make(map[string]*Session),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Create starts a new session.
func (r *Registry) Create() (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sessions) >= r.maxSessions {
		return nil, fmt.Errorf("create session: %d sessions: %w", len(r.sessions), domain.ErrLimitReached)
	}

	id := uuid.NewString()
	s := r.factory(id)
	r.sessions[id] = s

	r.log.Info("session created", slog.String("session_id", id), slog.Int("sessions", len(r.sessions)))
	return s, nil
}

// Get returns the session for id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	return s, nil
}

// Delete removes the session for id.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("session %s: %w", id, domain.ErrNotFound)
	}
	delete(r.sessions, id)

	r.log.Info("session deleted", slog.String("session_id", id))
	return nil
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes sessions idle for longer than the idle TTL and returns how
// many were removed.
func (r *Registry) Sweep() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, s := range r.sessions {
		if now.Sub(s.LastUsed()) > r.idleTTL {
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		r.log.Info("idle sessions expired", slog.Int("removed", removed), slog.Int("sessions", len(r.sessions)))
	}
	return removed
}

// StartSweeper runs Sweep every interval until Stop is called. Only the
// first call starts a goroutine.
func (r *Registry) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if !r.sweeping.CompareAndSwap(false, true) {
		return
	}
	go r.sweepLoop(interval)
}

// Stop terminates the sweeper goroutine and waits for it to exit.
func (r *Registry) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
	if r.sweeping.Load() {
		<-r.done
	}
}

func (r *Registry) sweepLoop(interval time.Duration) {
	defer close(r.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
