package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/zaplanje/price/internal/api/metrics"
	"github.com/zaplanje/price/internal/api/middleware"
	"github.com/zaplanje/price/internal/core/domain"
	"github.com/zaplanje/price/internal/core/service"
)

// SessionReleaser forgets the session manager of a browser client.
type SessionReleaser interface {
	Release(clientID string)
}

// AuthHandler exposes the session manager of the calling client. It relies
// on middleware.ClientSession having run.
type AuthHandler struct {
	sessions SessionReleaser
	log      zerolog.Logger
}

func NewAuthHandler(sessions SessionReleaser, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, log: log}
}

type registerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Login signs the client in.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      service.LoginForm  true  "Login credentials"
// @Success      200   {object}  domain.AuthState
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req service.LoginForm
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := service.ValidateLogin(req); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	session := middleware.SessionFrom(c)
	if session == nil {
		return errors.New("login: no session manager in context")
	}

	ctx := c.Request().Context()
	if !session.Login(ctx, req.Email, req.Password) {
		metrics.LoginAttemptsTotal.WithLabelValues("rejected").Inc()
		if ctx.Err() != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": service.MsgLoginFailed})
		}
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": service.MsgInvalidLogin})
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusOK, session.State())
}

// Register creates an author account. The new author confirms the address
// by e-mail before the first login.
//
// @Summary      Register a new author
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      service.RegistrationForm  true  "Registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  registerResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegistrationForm
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, registerResponse{Error: "invalid payload"})
	}

	var fe *service.FormError
	if err := service.ValidateRegistration(req); errors.As(err, &fe) {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return c.JSON(http.StatusBadRequest, registerResponse{Error: fe.Message})
	} else if err != nil {
		return err
	}

	session := middleware.SessionFrom(c)
	if session == nil {
		return errors.New("register: no session manager in context")
	}

	res := session.Register(c.Request().Context(), req.Email, req.Password, req.Name, req.Bio, req.Avatar)
	if !res.Success {
		metrics.RegistrationsTotal.WithLabelValues("rejected").Inc()
		msg := res.Error
		if msg == "" {
			msg = service.MsgRegistrationFailed
		}
		return c.JSON(http.StatusBadRequest, registerResponse{Error: msg})
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	return c.JSON(http.StatusCreated, registerResponse{Success: true, Message: service.MsgRegistered})
}

// Logout signs the client out and drops its session manager.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if session := middleware.SessionFrom(c); session != nil {
		session.Logout(c.Request().Context())
	}
	if id := middleware.ClientIDFrom(c); id != "" {
		h.sessions.Release(id)
		h.log.Debug().Str("client_id", id).Msg("client signed out")
	}
	return c.NoContent(http.StatusNoContent)
}

// State reports who is signed in and what they may do.
//
// @Summary      Current auth state
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.AuthState
// @Router       /auth/state [get]
func (h *AuthHandler) State(c echo.Context) error {
	session := middleware.SessionFrom(c)
	if session == nil {
		return c.JSON(http.StatusOK, domain.AuthState{})
	}
	return c.JSON(http.StatusOK, session.State())
}

// AdminPing answers only for administrators.
//
// @Summary      Administrator check
// @Tags         admin
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /admin/ping [get]
func (h *AuthHandler) AdminPing(c echo.Context) error {
	user := middleware.SessionFrom(c).User()
	if user == nil {
		return domain.ErrNoSession
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "user": user.Email})
}
