package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestClientSession_IssuesCookie(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	sess := &stubSession{}
	sessions := &stubSessions{session: sess}
	handler := ClientSession(sessions)(func(c echo.Context) error {
		if SessionFrom(c) != sess {
			t.Fatalf("session not stored in context")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != ClientCookie {
		t.Fatalf("expected %s cookie, got %+v", ClientCookie, cookies)
	}
	ck := cookies[0]
	if !ck.HttpOnly || ck.SameSite != http.SameSiteLaxMode || ck.Path != "/" {
		t.Fatalf("unexpected cookie attributes: %+v", ck)
	}
	if ck.Secure {
		t.Fatalf("plain http request must not get a secure cookie")
	}
	if len(sessions.acquired) != 1 || sessions.acquired[0] != ck.Value {
		t.Fatalf("expected acquire with %q, got %v", ck.Value, sessions.acquired)
	}
	if ClientIDFrom(c) != ck.Value {
		t.Fatalf("client id %q not stored", ck.Value)
	}
}

func TestClientSession_ReusesValidCookie(t *testing.T) {
	const id = "6f1c2a8e-3b4d-4e5f-8a9b-0c1d2e3f4a5b"

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ClientCookie, Value: id})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	sessions := &stubSessions{session: &stubSession{}}
	handler := ClientSession(sessions)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("valid cookie must not be reissued")
	}
	if len(sessions.acquired) != 1 || sessions.acquired[0] != id {
		t.Fatalf("expected acquire with %q, got %v", id, sessions.acquired)
	}
}

func TestClientSession_ReplacesMalformedCookie(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.AddCookie(&http.Cookie{Name: ClientCookie, Value: "../../etc/passwd"})
	req.Header.Set(echo.HeaderXForwardedProto, "https")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	sessions := &stubSessions{session: &stubSession{}}
	handler := ClientSession(sessions)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected a replacement cookie, got %d", len(cookies))
	}
	if cookies[0].Value == "../../etc/passwd" {
		t.Fatalf("malformed id was kept")
	}
	if !cookies[0].Secure {
		t.Fatalf("forwarded https request must get a secure cookie")
	}
}

func TestClientSession_CookielessReadIsAnonymous(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/auth/state", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	sessions := &stubSessions{session: &stubSession{}}
	handler := ClientSession(sessions)(func(c echo.Context) error {
		if SessionFrom(c) != nil || ClientIDFrom(c) != "" {
			t.Fatalf("cookieless read must not get a session")
		}
		return c.NoContent(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		if err := handler(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
	}
	if len(sessions.acquired) != 0 {
		t.Fatalf("expected no managers, got %d acquisitions", len(sessions.acquired))
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Fatalf("cookieless read must not be issued a cookie")
	}
}
