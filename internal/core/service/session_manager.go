package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/zaplanje/price/internal/core/domain"
	"github.com/zaplanje/price/internal/core/ports"
)

// registrationFailed is returned when the provider neither errors nor
// creates a user.
const registrationFailed = "Registration failed"

// SessionManager tracks who is signed in for one client and derives the
// permission flags from that profile. Provider calls never surface errors to
// callers: they are logged and turned into a failed result.
//
// State is written both by the request-driven methods and by the auth event
// loop started in Start. Writes are last-write-wins.
type SessionManager struct {
	provider ports.AuthProvider
	profiles ports.ProfileRepository
	log      zerolog.Logger

	mu            sync.RWMutex
	user          *domain.Profile
	authenticated bool
	loading       bool

	startOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewSessionManager returns a manager in the loading state. Call Start to
// restore the provider session and begin following auth events.
func NewSessionManager(provider ports.AuthProvider, profiles ports.ProfileRepository, log zerolog.Logger) *SessionManager {
	return &SessionManager{
		provider: provider,
		profiles: profiles,
		log:      log,
		loading:  true,
		done:     make(chan struct{}),
	}
}

var _ ports.SessionManager = (*SessionManager)(nil)

// Start subscribes to provider auth events, restores any existing session
// and then keeps processing events until ctx is cancelled or Close is
// called. Only the first call has any effect.
func (m *SessionManager) Start(ctx context.Context) {
	m.startOnce.Do(func() {
		events, unsubscribe := m.provider.Subscribe()

		loopCtx, cancel := context.WithCancel(ctx)
		m.mu.Lock()
		m.cancel = cancel
		m.mu.Unlock()

		m.restore(loopCtx)
		go m.run(loopCtx, events, unsubscribe)
	})
}

// Close stops the event loop and releases the provider subscription.
func (m *SessionManager) Close() {
	m.mu.RLock()
	cancel := m.cancel
	m.mu.RUnlock()
	if cancel == nil {
		return
	}
	cancel()
	<-m.done
}

func (m *SessionManager) restore(ctx context.Context) {
	defer m.setLoading(false)

	session, err := m.provider.GetSession(ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("error getting session")
		return
	}
	if session == nil || session.User == nil {
		return
	}

	if profile := m.activeProfile(ctx, session); profile != nil {
		m.setUser(profile)
	}
}

// Refresh re-reads the provider session, refreshing an expiring token on the
// way. A missing session signs this client out locally. A session started on
// another replica is adopted.
func (m *SessionManager) Refresh(ctx context.Context) {
	session, err := m.provider.GetSession(ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("error refreshing session")
		m.clear()
		return
	}
	if session == nil || session.User == nil {
		m.clear()
		return
	}

	if current := m.User(); current != nil && current.ID == session.User.ID {
		return
	}
	if profile := m.activeProfile(ctx, session); profile != nil {
		m.setUser(profile)
		return
	}
	m.clear()
}

func (m *SessionManager) run(ctx context.Context, events <-chan domain.AuthEvent, unsubscribe func()) {
	defer close(m.done)
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.handleEvent(ctx, ev)
		}
	}
}

func (m *SessionManager) handleEvent(ctx context.Context, ev domain.AuthEvent) {
	m.log.Debug().Str("event", string(ev.Kind)).Msg("auth state changed")

	switch ev.Kind {
	case domain.EventSignedIn:
		if ev.Session != nil && ev.Session.User != nil {
			if profile := m.activeProfile(ctx, ev.Session); profile != nil {
				m.setUser(profile)
			}
		}
	case domain.EventSignedOut:
		m.clear()
	}
	m.setLoading(false)
}

// Login checks the credentials with the provider and signs the user in only
// when an active profile exists. Any other outcome forces a provider sign-out
// so no half-authenticated session is left behind.
func (m *SessionManager) Login(ctx context.Context, email, password string) bool {
	m.setLoading(true)
	defer m.setLoading(false)

	session, err := m.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		m.log.Error().Err(err).Str("email", email).Msg("login error")
		return false
	}
	if session == nil || session.User == nil {
		return false
	}

	profile := m.activeProfile(ctx, session)
	if profile == nil {
		if err := m.provider.SignOut(ctx); err != nil {
			m.log.Error().Err(err).Msg("forced sign-out failed")
		}
		m.clear()
		return false
	}

	m.setUser(profile)
	return true
}

// Register creates a provider account with the author role. The profile row
// is created on the provider side, so a successful result does not sign the
// user in.
func (m *SessionManager) Register(ctx context.Context, email, password, name, bio, avatar string) domain.RegisterResult {
	m.setLoading(true)
	defer m.setLoading(false)

	user, err := m.provider.SignUp(ctx, email, password, domain.SignUpMetadata{
		Name:   name,
		Bio:    bio,
		Avatar: avatar,
		Role:   domain.DefaultSignUpRole,
	})
	if err != nil {
		msg := providerMessage(err)
		m.log.Error().Err(err).Str("email", email).Msg("registration error")
		return domain.RegisterResult{Success: false, Error: msg}
	}
	if user == nil {
		return domain.RegisterResult{Success: false, Error: registrationFailed}
	}
	return domain.RegisterResult{Success: true}
}

// Logout signs out with the provider and clears local state whatever the
// provider answered.
func (m *SessionManager) Logout(ctx context.Context) {
	if err := m.provider.SignOut(ctx); err != nil {
		m.log.Error().Err(err).Msg("logout error")
	}
	m.clear()
}

func (m *SessionManager) User() *domain.Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *SessionManager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.authenticated
}

func (m *SessionManager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// CanEdit reports whether the current user may edit posts. postID is not
// consulted: every post gets the same answer.
func (m *SessionManager) CanEdit(postID string) bool {
	return m.permissions().CanEdit
}

func (m *SessionManager) CanModerate() bool { return m.permissions().CanModerate }

func (m *SessionManager) CanAdmin() bool { return m.permissions().CanAdmin }

// State returns a consistent snapshot of everything the UI reads.
func (m *SessionManager) State() domain.AuthState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var user *domain.Profile
	if m.user != nil {
		u := *m.user
		user = &u
	}
	return domain.AuthState{
		User:            user,
		IsAuthenticated: m.authenticated,
		Loading:         m.loading,
		Permissions:     domain.PermissionsFor(user),
	}
}

func (m *SessionManager) permissions() domain.Permissions {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return domain.PermissionsFor(m.user)
}

// activeProfile returns the profile behind session, or nil when it is
// missing, inactive or could not be read. The reason is logged.
func (m *SessionManager) activeProfile(ctx context.Context, session *domain.Session) *domain.Profile {
	profile, err := m.lookupProfile(ctx, session)
	if err != nil {
		m.log.Error().Err(err).Str("user_id", session.User.ID).Msg("error fetching user profile")
		return nil
	}
	return profile
}

func (m *SessionManager) lookupProfile(ctx context.Context, session *domain.Session) (*domain.Profile, error) {
	profile, err := m.profiles.FindByID(ctx, session, session.User.ID)
	if err != nil {
		return nil, err
	}
	if !profile.IsActive {
		return nil, domain.ErrProfileInactive
	}
	return profile, nil
}

func (m *SessionManager) setUser(p *domain.Profile) {
	m.mu.Lock()
	m.user = p
	m.authenticated = true
	m.mu.Unlock()
}

func (m *SessionManager) clear() {
	m.mu.Lock()
	m.user = nil
	m.authenticated = false
	m.mu.Unlock()
}

func (m *SessionManager) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
}

// providerMessage extracts the human-readable message a provider attached to
// err, falling back to the error text.
func providerMessage(err error) string {
	var pm interface{ ProviderMessage() string }
	if errors.As(err, &pm) {
		return pm.ProviderMessage()
	}
	return err.Error()
}
