package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/zaplanje/price/internal/api/middleware"
	"github.com/zaplanje/price/internal/core/domain"
	"github.com/zaplanje/price/internal/core/service"
)

type stubSession struct {
	loginFn    func(ctx context.Context, email, password string) bool
	registerFn func(ctx context.Context, email, password, name, bio, avatar string) domain.RegisterResult

	user        *domain.Profile
	logoutCalls int
}

func (s *stubSession) Login(ctx context.Context, email, password string) bool {
	return s.loginFn(ctx, email, password)
}

func (s *stubSession) Register(ctx context.Context, email, password, name, bio, avatar string) domain.RegisterResult {
	return s.registerFn(ctx, email, password, name, bio, avatar)
}

func (s *stubSession) Logout(context.Context) {
	s.logoutCalls++
	s.user = nil
}

func (s *stubSession) Refresh(context.Context) {}
func (s *stubSession) User() *domain.Profile   { return s.user }
func (s *stubSession) IsAuthenticated() bool   { return s.user != nil }
func (s *stubSession) Loading() bool           { return false }
func (s *stubSession) CanEdit(string) bool     { return domain.PermissionsFor(s.user).CanEdit }
func (s *stubSession) CanModerate() bool       { return domain.PermissionsFor(s.user).CanModerate }
func (s *stubSession) CanAdmin() bool          { return domain.PermissionsFor(s.user).CanAdmin }

func (s *stubSession) State() domain.AuthState {
	return domain.AuthState{
		User:            s.user,
		IsAuthenticated: s.user != nil,
		Permissions:     domain.PermissionsFor(s.user),
	}
}

type stubReleaser struct {
	released []string
}

func (r *stubReleaser) Release(clientID string) { r.released = append(r.released, clientID) }

func newAuthContext(method, path, body string, sess *stubSession) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetSession(c, "client-1", sess)
	return c, rec
}

func TestAuthHandler_Login_Success(t *testing.T) {
	sess := &stubSession{}
	sess.loginFn = func(ctx context.Context, email, password string) bool {
		if email != "ana@example.com" || password != "x" {
			t.Fatalf("unexpected args: %s %s", email, password)
		}
		sess.user = &domain.Profile{ID: "u1", Email: email, Role: domain.RoleEditor, IsActive: true}
		return true
	}
	handler := NewAuthHandler(&stubReleaser{}, zerolog.Nop())

	c, rec := newAuthContext(http.MethodPost, "/auth/login", `{"email":"ana@example.com","password":"x"}`, sess)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["is_authenticated"] != true || resp["can_edit"] != true || resp["can_admin"] != false {
		t.Fatalf("unexpected state payload: %+v", resp)
	}
}

func TestAuthHandler_Login_Rejected(t *testing.T) {
	sess := &stubSession{
		loginFn: func(ctx context.Context, email, password string) bool { return false },
	}
	handler := NewAuthHandler(&stubReleaser{}, zerolog.Nop())

	c, rec := newAuthContext(http.MethodPost, "/auth/login", `{"email":"ana@example.com","password":"bad"}`, sess)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), service.MsgInvalidLogin) {
		t.Fatalf("expected localized message, got %s", rec.Body.String())
	}
}

func TestAuthHandler_Login_EmptyFields(t *testing.T) {
	sess := &stubSession{
		loginFn: func(ctx context.Context, email, password string) bool {
			t.Fatalf("provider must not be called for an invalid form")
			return false
		},
	}
	handler := NewAuthHandler(&stubReleaser{}, zerolog.Nop())

	c, _ := newAuthContext(http.MethodPost, "/auth/login", `{"email":"ana@example.com"}`, sess)
	err := handler.Login(c)

	var fe *service.FormError
	if !errors.As(err, &fe) || fe.Message != service.MsgAllFieldsRequired {
		t.Fatalf("expected form error %q, got %v", service.MsgAllFieldsRequired, err)
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	sess := &stubSession{
		registerFn: func(ctx context.Context, email, password, name, bio, avatar string) domain.RegisterResult {
			if email != "ana@example.com" || name != "Ана" || bio != "о мени" {
				t.Fatalf("unexpected args: %s %s %s", email, name, bio)
			}
			return domain.RegisterResult{Success: true}
		},
	}
	handler := NewAuthHandler(&stubReleaser{}, zerolog.Nop())

	body := `{"name":"Ана","email":"ana@example.com","password":"secret1","confirm_password":"secret1","bio":"о мени"}`
	c, rec := newAuthContext(http.MethodPost, "/auth/register", body, sess)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp registerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !resp.Success || resp.Message != service.MsgRegistered || resp.Error != "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_Register_ValidationSkipsProvider(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing name", `{"email":"a@b.rs","password":"secret1","confirm_password":"secret1"}`, service.MsgAllFieldsRequired},
		{"mismatch", `{"name":"A","email":"a@b.rs","password":"secret1","confirm_password":"secret2"}`, service.MsgPasswordsMismatch},
		{"short", `{"name":"A","email":"a@b.rs","password":"abc","confirm_password":"abc"}`, service.MsgPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := &stubSession{
				registerFn: func(ctx context.Context, email, password, name, bio, avatar string) domain.RegisterResult {
					t.Fatalf("provider must not be called for an invalid form")
					return domain.RegisterResult{}
				},
			}
			handler := NewAuthHandler(&stubReleaser{}, zerolog.Nop())

			c, rec := newAuthContext(http.MethodPost, "/auth/register", tt.body, sess)
			if err := handler.Register(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}

			var resp registerResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Success || resp.Error != tt.want {
				t.Fatalf("expected error %q, got %+v", tt.want, resp)
			}
		})
	}
}

func TestAuthHandler_Register_ProviderError(t *testing.T) {
	sess := &stubSession{
		registerFn: func(ctx context.Context, email, password, name, bio, avatar string) domain.RegisterResult {
			return domain.RegisterResult{Success: false, Error: "User already registered"}
		},
	}
	handler := NewAuthHandler(&stubReleaser{}, zerolog.Nop())

	body := `{"name":"A","email":"a@b.rs","password":"secret1","confirm_password":"secret1"}`
	c, rec := newAuthContext(http.MethodPost, "/auth/register", body, sess)
	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "User already registered") {
		t.Fatalf("provider message not surfaced: %s", rec.Body.String())
	}
}

func TestAuthHandler_Logout_ReleasesClient(t *testing.T) {
	sess := &stubSession{user: &domain.Profile{ID: "u1", IsActive: true}}
	releaser := &stubReleaser{}
	handler := NewAuthHandler(releaser, zerolog.Nop())

	c, rec := newAuthContext(http.MethodPost, "/auth/logout", "", sess)
	if err := handler.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if sess.logoutCalls != 1 {
		t.Fatalf("expected one logout, got %d", sess.logoutCalls)
	}
	if len(releaser.released) != 1 || releaser.released[0] != "client-1" {
		t.Fatalf("expected client-1 released, got %v", releaser.released)
	}
}

func TestAuthHandler_State_Anonymous(t *testing.T) {
	handler := NewAuthHandler(&stubReleaser{}, zerolog.Nop())

	c, rec := newAuthContext(http.MethodGet, "/auth/state", "", &stubSession{})
	if err := handler.State(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["user"] != nil || resp["is_authenticated"] != false || resp["can_moderate"] != false {
		t.Fatalf("unexpected anonymous state: %+v", resp)
	}
}
