package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/zaplanje/price/internal/core/domain"
	"github.com/zaplanje/price/internal/core/ports"
)

// Permission reads one grant off a session, e.g. ports.SessionManager.CanAdmin.
type Permission func(ports.SessionManager) bool

// RequirePermission enforces role-based access control. It must run after
// ClientSession. Anonymous callers fail with domain.ErrNoSession and
// signed-in callers without the grant with domain.ErrForbidden; the error
// handler turns those into 401 and 403.
func RequirePermission(allowed Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session := SessionFrom(c)
			if session == nil || !session.IsAuthenticated() {
				return domain.ErrNoSession
			}
			if !allowed(session) {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
