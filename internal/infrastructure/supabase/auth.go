package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/zaplanje/price/internal/core/domain"
	"github.com/zaplanje/price/internal/core/ports"
)

const (
	// expiryMargin refreshes tokens slightly before they lapse.
	expiryMargin     = 30 * time.Second
	subscriberBuffer = 16
)

// Auth is the GoTrue client for one browser client. The session it obtains
// is kept in a SessionStore under that client's key, and every change is
// announced to subscribers.
type Auth struct {
	client *Client
	store  ports.SessionStore
	key    string
	now    func() time.Time

	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

type subscriber struct {
	ch   chan domain.AuthEvent
	done chan struct{}
	once sync.Once
}

// NewAuth returns the provider for the browser client identified by key.
func NewAuth(client *Client, store ports.SessionStore, key string) *Auth {
	return &Auth{
		client: client,
		store:  store,
		key:    key,
		now:    time.Now,
		subs:   make(map[*subscriber]struct{}),
	}
}

var _ ports.AuthProvider = (*Auth)(nil)

// GetSession returns the stored session, refreshing it first when the access
// token is about to expire. A failed refresh signs the client out.
func (a *Auth) GetSession(ctx context.Context) (*domain.Session, error) {
	s, err := a.store.Load(ctx, a.key)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if s == nil {
		return nil, nil
	}
	if !s.Expired(a.now(), expiryMargin) {
		return s, nil
	}

	refreshed, err := a.refresh(ctx, s)
	if err != nil {
		a.dropSession(ctx)
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	return refreshed, nil
}

func (a *Auth) refresh(ctx context.Context, s *domain.Session) (*domain.Session, error) {
	if s.RefreshToken == "" {
		return nil, errors.New("no refresh token")
	}

	var resp tokenResponse
	err := a.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"refresh_token"}},
		body:   map[string]string{"refresh_token": s.RefreshToken},
	}, &resp)
	if err != nil {
		return nil, err
	}

	next := resp.session(a.now())
	if next == nil {
		return nil, errors.New("refresh returned no session")
	}
	if next.User == nil {
		next.User = s.User
	}
	if err := a.store.Save(ctx, a.key, next); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	a.emit(domain.AuthEvent{Kind: domain.EventTokenRefreshed, Session: next})
	return next, nil
}

// SignInWithPassword exchanges credentials for a session.
func (a *Auth) SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error) {
	var resp tokenResponse
	err := a.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/token",
		query:  url.Values{"grant_type": {"password"}},
		body:   map[string]string{"email": email, "password": password},
	}, &resp)
	if err != nil {
		return nil, err
	}

	s := resp.session(a.now())
	if s == nil || s.User == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := a.store.Save(ctx, a.key, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	a.emit(domain.AuthEvent{Kind: domain.EventSignedIn, Session: s})
	return s, nil
}

type signUpRequest struct {
	Email    string                `json:"email"`
	Password string                `json:"password"`
	Data     domain.SignUpMetadata `json:"data"`
}

// SignUp registers an account. Projects with auto-confirm answer with a
// session, which signs the client in; otherwise only the user comes back.
func (a *Auth) SignUp(ctx context.Context, email, password string, meta domain.SignUpMetadata) (*domain.AuthUser, error) {
	var resp tokenResponse
	err := a.client.do(ctx, request{
		method: http.MethodPost,
		path:   "/auth/v1/signup",
		body:   signUpRequest{Email: email, Password: password, Data: meta},
	}, &resp)
	if err != nil {
		return nil, err
	}

	if s := resp.session(a.now()); s != nil && s.User != nil {
		if err := a.store.Save(ctx, a.key, s); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
		a.emit(domain.AuthEvent{Kind: domain.EventSignedIn, Session: s})
		return s.User, nil
	}
	return resp.userJSON.toDomain(), nil
}

// SignOut revokes the session with the provider. The local session is
// dropped and SIGNED_OUT emitted even when the provider call fails.
func (a *Auth) SignOut(ctx context.Context) error {
	s, err := a.store.Load(ctx, a.key)
	if err != nil {
		a.dropSession(ctx)
		return fmt.Errorf("load session: %w", err)
	}

	var remoteErr error
	if s != nil && s.AccessToken != "" {
		remoteErr = a.client.do(ctx, request{
			method: http.MethodPost,
			path:   "/auth/v1/logout",
			query:  url.Values{"scope": {"global"}},
			bearer: s.AccessToken,
		}, nil)
		if isGone(remoteErr) {
			remoteErr = nil
		}
	}

	a.dropSession(ctx)
	return remoteErr
}

// isGone reports errors meaning the session is already invalid remotely.
func isGone(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}

func (a *Auth) dropSession(ctx context.Context) {
	_ = a.store.Delete(ctx, a.key)
	a.emit(domain.AuthEvent{Kind: domain.EventSignedOut})
}

// Subscribe registers for auth events. Events are delivered in the order
// they are emitted; the emitter blocks while the buffer is full.
func (a *Auth) Subscribe() (<-chan domain.AuthEvent, func()) {
	sub := &subscriber{
		ch:   make(chan domain.AuthEvent, subscriberBuffer),
		done: make(chan struct{}),
	}

	a.mu.Lock()
	a.subs[sub] = struct{}{}
	a.mu.Unlock()

	return sub.ch, func() {
		sub.once.Do(func() {
			close(sub.done)
			a.mu.Lock()
			delete(a.subs, sub)
			close(sub.ch)
			a.mu.Unlock()
		})
	}
}

func (a *Auth) emit(ev domain.AuthEvent) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for sub := range a.subs {
		select {
		case sub.ch <- ev:
		case <-sub.done:
		}
	}
}
