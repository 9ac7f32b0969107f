package domain

import "time"

// AuthUser is the provider's bare credential record.
type AuthUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
}

// Session is a provider-issued token pair for one signed-in user.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *AuthUser `json:"user"`
}

// Expired reports whether the access token is past its expiry, with leeway
// so that tokens about to lapse are refreshed early.
func (s *Session) Expired(now time.Time, leeway time.Duration) bool {
	if s == nil || s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(leeway).Before(s.ExpiresAt)
}

// AuthEventKind names a provider auth state change.
type AuthEventKind string

const (
	EventInitialSession AuthEventKind = "INITIAL_SESSION"
	EventSignedIn       AuthEventKind = "SIGNED_IN"
	EventSignedOut      AuthEventKind = "SIGNED_OUT"
	EventTokenRefreshed AuthEventKind = "TOKEN_REFRESHED"
	EventUserUpdated    AuthEventKind = "USER_UPDATED"
)

// AuthEvent is one notification delivered to auth state subscribers.
type AuthEvent struct {
	Kind    AuthEventKind
	Session *Session // nil on SIGNED_OUT
}

// AuthState is a point-in-time snapshot of a session manager.
type AuthState struct {
	User            *Profile `json:"user"`
	IsAuthenticated bool     `json:"is_authenticated"`
	Loading         bool     `json:"loading"`
	Permissions
}
