package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/zaplanje/price/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubProvider struct {
	getSessionFn func(ctx context.Context) (*domain.Session, error)
	signInFn     func(ctx context.Context, email, password string) (*domain.Session, error)
	signUpFn     func(ctx context.Context, email, password string, meta domain.SignUpMetadata) (*domain.AuthUser, error)
	signOutErr   error

	signInCalls  int
	signOutCalls int
	events       chan domain.AuthEvent
	unsubscribed chan struct{}
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		events:       make(chan domain.AuthEvent, 8),
		unsubscribed: make(chan struct{}),
	}
}

func (p *stubProvider) GetSession(ctx context.Context) (*domain.Session, error) {
	if p.getSessionFn == nil {
		return nil, nil
	}
	return p.getSessionFn(ctx)
}

func (p *stubProvider) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	p.signInCalls++
	return p.signInFn(ctx, email, password)
}

func (p *stubProvider) SignUp(ctx context.Context, email, password string, meta domain.SignUpMetadata) (*domain.AuthUser, error) {
	return p.signUpFn(ctx, email, password, meta)
}

func (p *stubProvider) SignOut(_ context.Context) error {
	p.signOutCalls++
	return p.signOutErr
}

func (p *stubProvider) Subscribe() (<-chan domain.AuthEvent, func()) {
	return p.events, func() { close(p.unsubscribed) }
}

type stubProfiles struct {
	byID map[string]*domain.Profile
	err  error
}

func (r *stubProfiles) FindByID(_ context.Context, _ *domain.Session, userID string) (*domain.Profile, error) {
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.byID[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

type providerErr struct{ msg string }

func (e *providerErr) Error() string           { return "provider: " + e.msg }
func (e *providerErr) ProviderMessage() string { return e.msg }

func sessionFor(userID string) *domain.Session {
	return &domain.Session{
		AccessToken: "token-" + userID,
		ExpiresAt:   time.Now().Add(time.Hour),
		User:        &domain.AuthUser{ID: userID, Email: userID + "@example.com"},
	}
}

func profilesWith(ps ...*domain.Profile) *stubProfiles {
	r := &stubProfiles{byID: make(map[string]*domain.Profile)}
	for _, p := range ps {
		r.byID[p.ID] = p
	}
	return r
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

// ---------------------------------------------------------------------------
// Login
// ---------------------------------------------------------------------------

func TestSessionManager_Login_Success(t *testing.T) {
	provider := newStubProvider()
	provider.signInFn = func(_ context.Context, email, password string) (*domain.Session, error) {
		if email != "a@b.com" || password != "secret1" {
			t.Fatalf("unexpected args: %s %s", email, password)
		}
		return sessionFor("u1"), nil
	}
	profiles := profilesWith(&domain.Profile{ID: "u1", Name: "Ана", Role: domain.RoleEditor, IsActive: true})

	m := NewSessionManager(provider, profiles, zerolog.Nop())
	if !m.Login(context.Background(), "a@b.com", "secret1") {
		t.Fatalf("expected login to succeed")
	}
	if !m.IsAuthenticated() {
		t.Fatalf("expected authenticated")
	}
	if m.User() == nil || m.User().Name != "Ана" {
		t.Fatalf("unexpected user: %+v", m.User())
	}
	if !m.CanEdit("any") || !m.CanModerate() || m.CanAdmin() {
		t.Fatalf("unexpected permissions for editor: %+v", m.State().Permissions)
	}
	if m.Loading() {
		t.Fatalf("loading should be cleared after login")
	}
}

func TestSessionManager_Login_InactiveOrMissingProfile(t *testing.T) {
	cases := map[string]*stubProfiles{
		"inactive": profilesWith(&domain.Profile{ID: "u1", Role: domain.RoleSuperAdmin, IsActive: false}),
		"missing":  profilesWith(),
		"error":    {err: errors.New("boom")},
	}

	for name, profiles := range cases {
		t.Run(name, func(t *testing.T) {
			provider := newStubProvider()
			provider.signInFn = func(context.Context, string, string) (*domain.Session, error) {
				return sessionFor("u1"), nil
			}

			m := NewSessionManager(provider, profiles, zerolog.Nop())
			if m.Login(context.Background(), "a@b.com", "secret1") {
				t.Fatalf("expected login to fail")
			}
			if provider.signOutCalls != 1 {
				t.Fatalf("expected forced sign-out, got %d calls", provider.signOutCalls)
			}
			if m.IsAuthenticated() || m.User() != nil {
				t.Fatalf("no session should be left behind")
			}
		})
	}
}

func TestSessionManager_Login_ProviderRejects(t *testing.T) {
	provider := newStubProvider()
	provider.signInFn = func(context.Context, string, string) (*domain.Session, error) {
		return nil, &providerErr{msg: "Invalid login credentials"}
	}

	m := NewSessionManager(provider, profilesWith(), zerolog.Nop())
	if m.Login(context.Background(), "a@b.com", "wrong") {
		t.Fatalf("expected login to fail")
	}
	if provider.signOutCalls != 0 {
		t.Fatalf("sign-out should not be forced when credentials are rejected")
	}
}

func TestSessionManager_Login_NoLengthCheck(t *testing.T) {
	provider := newStubProvider()
	provider.signInFn = func(context.Context, string, string) (*domain.Session, error) {
		return nil, &providerErr{msg: "Invalid login credentials"}
	}

	m := NewSessionManager(provider, profilesWith(), zerolog.Nop())
	_ = m.Login(context.Background(), "a@b.com", "short")
	if provider.signInCalls != 1 {
		t.Fatalf("expected the provider to be called regardless of password length")
	}
}

// ---------------------------------------------------------------------------
// Register
// ---------------------------------------------------------------------------

func TestSessionManager_Register_Success(t *testing.T) {
	provider := newStubProvider()
	provider.signUpFn = func(_ context.Context, email, password string, meta domain.SignUpMetadata) (*domain.AuthUser, error) {
		if meta.Role != domain.RoleAuthor {
			t.Fatalf("expected author role, got %q", meta.Role)
		}
		if meta.Name != "Марко" || meta.Bio != "bio" || meta.Avatar != "" {
			t.Fatalf("unexpected metadata: %+v", meta)
		}
		return &domain.AuthUser{ID: "u2", Email: email}, nil
	}

	m := NewSessionManager(provider, profilesWith(), zerolog.Nop())
	res := m.Register(context.Background(), "m@b.com", "secret1", "Марко", "bio", "")
	if !res.Success || res.Error != "" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if m.IsAuthenticated() {
		t.Fatalf("registration must not sign the user in")
	}
}

func TestSessionManager_Register_ProviderMessagePassedThrough(t *testing.T) {
	provider := newStubProvider()
	provider.signUpFn = func(context.Context, string, string, domain.SignUpMetadata) (*domain.AuthUser, error) {
		return nil, &providerErr{msg: "User already registered"}
	}

	m := NewSessionManager(provider, profilesWith(), zerolog.Nop())
	res := m.Register(context.Background(), "m@b.com", "secret1", "Марко", "", "")
	if res.Success {
		t.Fatalf("expected failure")
	}
	if res.Error != "User already registered" {
		t.Fatalf("expected provider message verbatim, got %q", res.Error)
	}
}

func TestSessionManager_Register_NoUserCreated(t *testing.T) {
	provider := newStubProvider()
	provider.signUpFn = func(context.Context, string, string, domain.SignUpMetadata) (*domain.AuthUser, error) {
		return nil, nil
	}

	m := NewSessionManager(provider, profilesWith(), zerolog.Nop())
	res := m.Register(context.Background(), "m@b.com", "secret1", "Марко", "", "")
	if res.Success || res.Error != registrationFailed {
		t.Fatalf("unexpected result: %+v", res)
	}
}

// ---------------------------------------------------------------------------
// Logout
// ---------------------------------------------------------------------------

func TestSessionManager_Logout_ClearsEvenOnProviderError(t *testing.T) {
	provider := newStubProvider()
	provider.signInFn = func(context.Context, string, string) (*domain.Session, error) {
		return sessionFor("u1"), nil
	}
	provider.signOutErr = errors.New("network down")
	profiles := profilesWith(&domain.Profile{ID: "u1", Role: domain.RoleAuthor, IsActive: true})

	m := NewSessionManager(provider, profiles, zerolog.Nop())
	if !m.Login(context.Background(), "a@b.com", "secret1") {
		t.Fatalf("login failed")
	}

	m.Logout(context.Background())
	if m.IsAuthenticated() || m.User() != nil {
		t.Fatalf("expected local state cleared")
	}
}

// ---------------------------------------------------------------------------
// Restore + event loop
// ---------------------------------------------------------------------------

func TestSessionManager_Start_RestoresSessionWithSamePermissions(t *testing.T) {
	profiles := profilesWith(&domain.Profile{ID: "admin", Role: domain.RoleSuperAdmin, IsActive: true})

	first := newStubProvider()
	first.signInFn = func(context.Context, string, string) (*domain.Session, error) {
		return sessionFor("admin"), nil
	}
	original := NewSessionManager(first, profiles, zerolog.Nop())
	if !original.Login(context.Background(), "admin@example.com", "secret1") {
		t.Fatalf("login failed")
	}

	reloaded := newStubProvider()
	reloaded.getSessionFn = func(context.Context) (*domain.Session, error) {
		return sessionFor("admin"), nil
	}
	restored := NewSessionManager(reloaded, profiles, zerolog.Nop())
	if !restored.Loading() {
		t.Fatalf("a new manager starts in the loading state")
	}
	restored.Start(context.Background())
	defer restored.Close()

	if restored.Loading() {
		t.Fatalf("loading should be cleared once restore finishes")
	}
	if restored.State().Permissions != original.State().Permissions {
		t.Fatalf("permissions differ after restore: %+v vs %+v",
			restored.State().Permissions, original.State().Permissions)
	}
}

func TestSessionManager_Start_SessionErrorLeavesSignedOut(t *testing.T) {
	provider := newStubProvider()
	provider.getSessionFn = func(context.Context) (*domain.Session, error) {
		return nil, errors.New("unreachable")
	}

	m := NewSessionManager(provider, profilesWith(), zerolog.Nop())
	m.Start(context.Background())
	defer m.Close()

	if m.IsAuthenticated() || m.Loading() {
		t.Fatalf("unexpected state: %+v", m.State())
	}
}

func TestSessionManager_EventLoop(t *testing.T) {
	provider := newStubProvider()
	profiles := profilesWith(&domain.Profile{ID: "u1", Role: domain.RoleEditor, IsActive: true})

	m := NewSessionManager(provider, profiles, zerolog.Nop())
	m.Start(context.Background())

	provider.events <- domain.AuthEvent{Kind: domain.EventSignedIn, Session: sessionFor("u1")}
	waitFor(t, m.IsAuthenticated)

	// Other kinds never touch the profile.
	provider.events <- domain.AuthEvent{Kind: domain.EventTokenRefreshed, Session: sessionFor("ghost")}
	provider.events <- domain.AuthEvent{Kind: domain.EventUserUpdated}
	provider.events <- domain.AuthEvent{Kind: domain.EventSignedOut}
	waitFor(t, func() bool { return !m.IsAuthenticated() })

	if m.User() != nil {
		t.Fatalf("expected profile cleared on SIGNED_OUT")
	}

	m.Close()
	select {
	case <-provider.unsubscribed:
	case <-time.After(time.Second):
		t.Fatalf("subscription not released on Close")
	}
}

func TestSessionManager_Close_WithoutStart(t *testing.T) {
	m := NewSessionManager(newStubProvider(), profilesWith(), zerolog.Nop())
	m.Close()
}

func TestSessionManager_Refresh(t *testing.T) {
	admin := &domain.Profile{ID: "u1", Role: domain.RoleSuperAdmin, IsActive: true}

	tests := []struct {
		name       string
		signedIn   bool
		session    *domain.Session
		err        error
		profiles   *stubProfiles
		wantAuthed bool
	}{
		{"session still valid", true, sessionFor("u1"), nil, profilesWith(admin), true},
		{"session gone", true, nil, nil, profilesWith(admin), false},
		{"refresh failed", true, nil, errors.New("invalid_grant"), profilesWith(admin), false},
		{"signed in elsewhere", false, sessionFor("u1"), nil, profilesWith(admin), true},
		{"profile deactivated", false, sessionFor("u1"), nil, profilesWith(&domain.Profile{ID: "u1", IsActive: false}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewSessionManager(newStubProvider(), tt.profiles, zerolog.Nop())
			if tt.signedIn {
				m.setUser(admin)
			}
			m.provider.(*stubProvider).getSessionFn = func(context.Context) (*domain.Session, error) {
				return tt.session, tt.err
			}

			m.Refresh(context.Background())

			if m.IsAuthenticated() != tt.wantAuthed {
				t.Fatalf("expected authenticated=%v, got %+v", tt.wantAuthed, m.State())
			}
			if !tt.wantAuthed && m.User() != nil {
				t.Fatalf("expected user cleared")
			}
		})
	}
}

func TestSessionManager_Refresh_SameUserSkipsProfileLookup(t *testing.T) {
	profiles := profilesWith(&domain.Profile{ID: "u1", Role: domain.RoleEditor, IsActive: true})
	provider := newStubProvider()
	provider.getSessionFn = func(context.Context) (*domain.Session, error) { return sessionFor("u1"), nil }

	m := NewSessionManager(provider, profiles, zerolog.Nop())
	m.setUser(&domain.Profile{ID: "u1", Role: domain.RoleEditor, IsActive: true})

	profiles.err = errors.New("profiles unavailable")
	m.Refresh(context.Background())

	if !m.IsAuthenticated() {
		t.Fatalf("an unchanged session must not require a profile lookup")
	}
}
