package supabase

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zaplanje/price/internal/core/domain"
)

// tokenResponse is GoTrue's session payload. Sign-up without auto-confirm
// returns the bare user at the top level instead, hence the inline fields.
type tokenResponse struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    int64     `json:"expires_at"`
	RefreshToken string    `json:"refresh_token"`
	User         *userJSON `json:"user"`

	userJSON
}

type userJSON struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata"`
}

func (u *userJSON) toDomain() *domain.AuthUser {
	if u == nil || u.ID == "" {
		return nil
	}
	return &domain.AuthUser{ID: u.ID, Email: u.Email, UserMetadata: u.UserMetadata}
}

// session converts the response, or returns nil when it carries no tokens.
func (r *tokenResponse) session(now time.Time) *domain.Session {
	if r.AccessToken == "" {
		return nil
	}
	return &domain.Session{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		TokenType:    r.TokenType,
		ExpiresAt:    r.expiry(now),
		User:         r.User.toDomain(),
	}
}

// expiry prefers the explicit expires_at, then the token's own exp claim,
// then expires_in counted from now.
func (r *tokenResponse) expiry(now time.Time) time.Time {
	if r.ExpiresAt > 0 {
		return time.Unix(r.ExpiresAt, 0).UTC()
	}
	if exp, ok := tokenExpiry(r.AccessToken); ok {
		return exp
	}
	if r.ExpiresIn > 0 {
		return now.Add(time.Duration(r.ExpiresIn) * time.Second).UTC()
	}
	return time.Time{}
}

// tokenExpiry reads the exp claim. The signature is not verified.
func tokenExpiry(token string) (time.Time, bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time.UTC(), true
}
