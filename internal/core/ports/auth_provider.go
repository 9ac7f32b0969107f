package ports

import (
	"context"

	"github.com/zaplanje/price/internal/core/domain"
)

// AuthProvider is the hosted authentication service. Implementations own
// token storage and emit auth state changes to subscribers.
type AuthProvider interface {
	// GetSession returns the current session, or nil when nobody is signed in.
	GetSession(ctx context.Context) (*domain.Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (*domain.Session, error)
	// SignUp creates an account. The returned user is nil when the provider
	// accepted the request without creating one.
	SignUp(ctx context.Context, email, password string, meta domain.SignUpMetadata) (*domain.AuthUser, error)
	SignOut(ctx context.Context) error
	// Subscribe delivers auth events in order until the returned cancel func
	// is called, after which the channel is closed.
	Subscribe() (<-chan domain.AuthEvent, func())
}

// ProfileRepository reads application profiles by provider user id.
type ProfileRepository interface {
	FindByID(ctx context.Context, session *domain.Session, userID string) (*domain.Profile, error)
}

// SessionStore persists the provider session between requests, keyed by the
// browser client it belongs to.
type SessionStore interface {
	Load(ctx context.Context, key string) (*domain.Session, error)
	Save(ctx context.Context, key string, s *domain.Session) error
	Delete(ctx context.Context, key string) error
}
