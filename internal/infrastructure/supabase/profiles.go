package supabase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/zaplanje/price/internal/core/domain"
	"github.com/zaplanje/price/internal/core/ports"
)

const (
	profilesPath = "/rest/v1/profiles"
	// singleObject asks PostgREST for one row, or 406 when there is none.
	singleObject = "application/vnd.pgrst.object+json"
)

// ProfileRepository reads the profiles table through PostgREST.
type ProfileRepository struct {
	client *Client
}

func NewProfileRepository(client *Client) *ProfileRepository {
	return &ProfileRepository{client: client}
}

var _ ports.ProfileRepository = (*ProfileRepository)(nil)

type profileRow struct {
	ID       string    `json:"id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	Avatar   *string   `json:"avatar"`
	Bio      *string   `json:"bio"`
	JoinedAt time.Time `json:"joined_at"`
	IsActive bool      `json:"is_active"`
}

// FindByID fetches the profile of userID with the caller's access token so
// row-level security applies.
func (r *ProfileRepository) FindByID(ctx context.Context, session *domain.Session, userID string) (*domain.Profile, error) {
	var bearer string
	if session != nil {
		bearer = session.AccessToken
	}

	var row profileRow
	err := r.client.do(ctx, request{
		method: http.MethodGet,
		path:   profilesPath,
		query:  url.Values{"select": {"*"}, "id": {"eq." + userID}},
		bearer: bearer,
		accept: singleObject,
	}, &row)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotAcceptable {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile %s: %w", userID, err)
	}
	if row.ID == "" {
		return nil, domain.ErrProfileNotFound
	}

	// Unknown roles grant nothing.
	role := domain.Role(row.Role)
	if !role.Valid() {
		role = domain.RoleReader
	}

	return &domain.Profile{
		ID:       row.ID,
		Email:    row.Email,
		Name:     row.Name,
		Role:     role,
		Avatar:   deref(row.Avatar),
		Bio:      deref(row.Bio),
		JoinedAt: row.JoinedAt.UTC(),
		IsActive: row.IsActive,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
