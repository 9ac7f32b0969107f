package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/zaplanje/price/internal/core/ports"
)

// ClientCookie names the cookie that identifies a browser client. It carries
// no credentials; the provider tokens stay server side.
const ClientCookie = "zp_client"

const (
	ctxSession  = "session"
	ctxClientID = "client_id"
)

// clientCookieMaxAge matches the default session store TTL.
const clientCookieMaxAge = 30 * 24 * 60 * 60

// Sessions hands out the session manager for a browser client.
type Sessions interface {
	Acquire(ctx context.Context, clientID string) ports.SessionManager
	Release(clientID string)
}

// ClientSession resolves the zp_client cookie and stores the client's
// SessionManager in the request context. A missing or malformed cookie is
// replaced on state-changing requests only; a cookieless GET is anonymous
// and gets no session at all.
func ClientSession(sessions Sessions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			clientID := ""
			if ck, err := c.Cookie(ClientCookie); err == nil {
				if id, err := uuid.Parse(ck.Value); err == nil {
					clientID = id.String()
				}
			}
			if clientID == "" {
				if isSafeMethod(c.Request().Method) {
					return next(c)
				}
				clientID = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     ClientCookie,
					Value:    clientID,
					Path:     "/",
					MaxAge:   clientCookieMaxAge,
					HttpOnly: true,
					Secure:   isSecure(c.Request()),
					SameSite: http.SameSiteLaxMode,
				})
			}

			SetSession(c, clientID, sessions.Acquire(c.Request().Context(), clientID))
			return next(c)
		}
	}
}

// SetSession binds a client and its session manager to the request.
func SetSession(c echo.Context, clientID string, m ports.SessionManager) {
	c.Set(ctxClientID, clientID)
	c.Set(ctxSession, m)
}

// SessionFrom returns the manager stored by ClientSession, or nil.
func SessionFrom(c echo.Context) ports.SessionManager {
	m, _ := c.Get(ctxSession).(ports.SessionManager)
	return m
}

func ClientIDFrom(c echo.Context) string {
	id, _ := c.Get(ctxClientID).(string)
	return id
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func isSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get(echo.HeaderXForwardedProto), "https")
}
