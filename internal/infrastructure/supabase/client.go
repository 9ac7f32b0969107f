// Package supabase talks to a hosted Supabase project: GoTrue for accounts
// and sessions, PostgREST for the profiles table.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Config captures what is needed to reach a project.
type Config struct {
	URL     string
	AnonKey string
	Timeout time.Duration
	// HTTPClient overrides the default client, mostly for tests.
	HTTPClient *http.Client
}

// Client holds the project endpoint and the anon key. It is safe for
// concurrent use and shared by every per-browser Auth.
type Client struct {
	base    *url.URL
	anonKey string
	http    *http.Client
}

// New validates cfg and returns a Client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" || cfg.AnonKey == "" {
		return nil, errors.New("supabase: url and anon key are required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.URL, "/"))
	if err != nil {
		return nil, fmt.Errorf("supabase: parse url: %w", err)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{base: base, anonKey: cfg.AnonKey, http: hc}, nil
}

// APIError is an error response from GoTrue or PostgREST.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase: %d: %s", e.Status, e.Message)
}

// ProviderMessage is the message the provider meant for end users.
func (e *APIError) ProviderMessage() string { return e.Message }

// errorBody covers the error shapes GoTrue and PostgREST return.
type errorBody struct {
	Code             json.RawMessage `json:"code"`
	ErrorCode        string          `json:"error_code"`
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
}

func parseError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(status)
		}
		return apiErr
	}

	switch {
	case eb.ErrorCode != "":
		apiErr.Code = eb.ErrorCode
	case eb.Error != "":
		apiErr.Code = eb.Error
	case len(eb.Code) > 0 && eb.Code[0] == '"':
		_ = json.Unmarshal(eb.Code, &apiErr.Code)
	}

	for _, m := range []string{eb.Msg, eb.ErrorDescription, eb.Message, eb.Error} {
		if m != "" {
			apiErr.Message = m
			break
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

type request struct {
	method string
	path   string
	query  url.Values
	bearer string
	accept string
	body   any
}

// do sends req and decodes a 2xx JSON response into out when out is non-nil.
func (c *Client) do(ctx context.Context, req request, out any) error {
	u := *c.base
	u.Path = c.base.Path + req.path
	if req.query != nil {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		buf, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", req.path, err)
		}
		body = bytes.NewReader(buf)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build %s: %w", req.path, err)
	}
	bearer := req.bearer
	if bearer == "" {
		bearer = c.anonKey
	}
	httpReq.Header.Set("apikey", c.anonKey)
	httpReq.Header.Set("Authorization", "Bearer "+bearer)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.accept != "" {
		httpReq.Header.Set("Accept", req.accept)
	} else {
		httpReq.Header.Set("Accept", "application/json")
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read %s: %w", req.path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp.StatusCode, raw)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", req.path, err)
	}
	return nil
}

// Health checks that the auth service answers.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodGet, path: "/auth/v1/health"}, nil)
}
