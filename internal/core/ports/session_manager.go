package ports

import (
	"context"

	"github.com/zaplanje/price/internal/core/domain"
)

// SessionManager is the auth capability handed to anything that needs to
// know who is signed in.
type SessionManager interface {
	Login(ctx context.Context, email, password string) bool
	Register(ctx context.Context, email, password, name, bio, avatar string) domain.RegisterResult
	Logout(ctx context.Context)
	// Refresh re-reads the provider session so an expired or revoked token
	// stops authenticating the client.
	Refresh(ctx context.Context)

	User() *domain.Profile
	IsAuthenticated() bool
	Loading() bool
	CanEdit(postID string) bool
	CanModerate() bool
	CanAdmin() bool
	State() domain.AuthState
}
