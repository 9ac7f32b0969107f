package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/zaplanje/price/internal/core/ports"
)

// DefaultIdleTimeout is how long a client's manager survives without a
// request. Eviction only stops the manager; the provider session stays in
// the store and is restored on the client's next request.
const DefaultIdleTimeout = 30 * time.Minute

// ProviderFactory builds the provider client bound to one browser client.
type ProviderFactory func(clientID string) ports.AuthProvider

// RegistryOption tunes a Registry.
type RegistryOption func(*Registry)

// WithIdleTimeout sets how long an unused manager is kept. Zero or less
// disables eviction.
func WithIdleTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) { r.idleTimeout = d }
}

type registryEntry struct {
	manager  *SessionManager
	lastUsed time.Time
}

// Registry owns one SessionManager per browser client. Managers are started
// on first use and live until Release, Close, or idle eviction.
type Registry struct {
	newProvider ProviderFactory
	profiles    ports.ProfileRepository
	log         zerolog.Logger
	idleTimeout time.Duration
	now         func() time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	janitor sync.WaitGroup

	mu       sync.Mutex
	managers map[string]*registryEntry
}

// NewRegistry returns a Registry whose managers run until Close. Idle
// managers are evicted in the background.
func NewRegistry(newProvider ProviderFactory, profiles ports.ProfileRepository, log zerolog.Logger, opts ...RegistryOption) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Registry{
		newProvider: newProvider,
		profiles:    profiles,
		log:         log,
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
		ctx:         ctx,
		cancel:      cancel,
		managers:    make(map[string]*registryEntry),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.idleTimeout > 0 {
		r.janitor.Add(1)
		go r.sweep(max(r.idleTimeout/2, time.Second))
	}
	return r
}

// Acquire returns the manager for clientID. A new manager is started and
// restores the stored session; a reused one re-checks it with the provider
// so expired or revoked tokens are noticed.
func (r *Registry) Acquire(ctx context.Context, clientID string) ports.SessionManager {
	r.mu.Lock()
	if e, ok := r.managers[clientID]; ok {
		e.lastUsed = r.now()
		r.mu.Unlock()

		e.manager.Refresh(ctx)
		return e.manager
	}
	m := NewSessionManager(r.newProvider(clientID), r.profiles, r.log.With().Str("client_id", clientID).Logger())
	r.managers[clientID] = &registryEntry{manager: m, lastUsed: r.now()}
	r.mu.Unlock()

	m.Start(r.ctx)
	return m
}

// Release stops and forgets the manager for clientID.
func (r *Registry) Release(clientID string) {
	r.mu.Lock()
	e, ok := r.managers[clientID]
	delete(r.managers, clientID)
	r.mu.Unlock()

	if ok {
		e.manager.Close()
	}
}

// Len reports how many clients currently hold a manager.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.managers)
}

// Close stops the janitor and every manager.
func (r *Registry) Close() {
	r.cancel()
	r.janitor.Wait()

	r.mu.Lock()
	managers := r.managers
	r.managers = make(map[string]*registryEntry)
	r.mu.Unlock()

	for _, e := range managers {
		e.manager.Close()
	}
}

func (r *Registry) sweep(every time.Duration) {
	defer r.janitor.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			if n := r.evictIdle(); n > 0 {
				r.log.Debug().Int("evicted", n).Msg("idle session managers evicted")
			}
		}
	}
}

// evictIdle stops managers unused for longer than the idle timeout and
// returns how many were removed.
func (r *Registry) evictIdle() int {
	cutoff := r.now().Add(-r.idleTimeout)

	r.mu.Lock()
	var stale []*SessionManager
	for id, e := range r.managers {
		if e.lastUsed.Before(cutoff) {
			stale = append(stale, e.manager)
			delete(r.managers, id)
		}
	}
	r.mu.Unlock()

	for _, m := range stale {
		m.Close()
	}
	return len(stale)
}
