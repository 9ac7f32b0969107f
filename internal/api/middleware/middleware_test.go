package middleware

import (
	"context"

	"github.com/zaplanje/price/internal/core/domain"
	"github.com/zaplanje/price/internal/core/ports"
)

type stubSession struct {
	user *domain.Profile
}

func (s *stubSession) Login(context.Context, string, string) bool { return false }

func (s *stubSession) Register(context.Context, string, string, string, string, string) domain.RegisterResult {
	return domain.RegisterResult{}
}

func (s *stubSession) Logout(context.Context)  {}
func (s *stubSession) Refresh(context.Context) {}
func (s *stubSession) User() *domain.Profile   { return s.user }
func (s *stubSession) IsAuthenticated() bool   { return s.user != nil }
func (s *stubSession) Loading() bool           { return false }
func (s *stubSession) CanEdit(string) bool     { return domain.PermissionsFor(s.user).CanEdit }
func (s *stubSession) CanModerate() bool       { return domain.PermissionsFor(s.user).CanModerate }
func (s *stubSession) CanAdmin() bool          { return domain.PermissionsFor(s.user).CanAdmin }
func (s *stubSession) State() domain.AuthState { return domain.AuthState{} }

type stubSessions struct {
	acquired []string
	session  ports.SessionManager
}

func (s *stubSessions) Acquire(_ context.Context, clientID string) ports.SessionManager {
	s.acquired = append(s.acquired, clientID)
	return s.session
}

func (s *stubSessions) Release(string) {}
