package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"
)

type staticTokens struct{ tok string }

func (s staticTokens) Token() (string, bool) { return s.tok, s.tok != "" }

func TestResolveEndpoint_Order(t *testing.T) {
	t.Setenv(EnvEndpoint, "")

	if got := ResolveEndpoint("https://cfg.example.com/", "https://app.example.com"); got != "https://cfg.example.com" {
		t.Errorf("explicit config: got %q", got)
	}

	BuildEndpoint = "https://build.example.com"
	defer func() { BuildEndpoint = "" }()
	if got := ResolveEndpoint("", "https://app.example.com"); got != "https://build.example.com" {
		t.Errorf("build override: got %q", got)
	}

	BuildEndpoint = ""
	t.Setenv(EnvEndpoint, "https://env.example.com")
	if got := ResolveEndpoint("", "https://app.example.com"); got != "https://env.example.com" {
		t.Errorf("env override: got %q", got)
	}

	os.Unsetenv(EnvEndpoint)
	if got := ResolveEndpoint("", "https://app.example.com"); got != "https://app.example.com/api" {
		t.Errorf("same-origin default: got %q", got)
	}
}

func TestGet_AttachesBearerWhenTokenPresent(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}))
	defer srv.Close()

	c := New(srv.URL, staticTokens{tok: "tok-123"})
	var out map[string]string
	if err := c.Get(context.Background(), "/me", &out); err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", gotAuth)
	}
}

func TestGet_UnauthenticatedWhenNoToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(srv.URL, staticTokens{})
	if err := c.Get(context.Background(), "/healthz", nil); err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty for public endpoint", gotAuth)
	}
}

func TestDo_UnauthorizedMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "token expired"})
	}))
	defer srv.Close()

	c := New(srv.URL, staticTokens{tok: "stale"})
	err := c.Get(context.Background(), "/twilio/numbers", nil)
	if err == nil {
		t.Fatal("Get() expected error for 401")
	}

	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("errors.Is(err, ErrUnauthorized) = false, err = %v", err)
	}
	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("error is %T, want *StatusError", err)
	}
	if serr.Detail != "token expired" {
		t.Errorf("Detail = %q, want backend message", serr.Detail)
	}
}

func TestDo_ConflictCarriesBackendDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "username already exists"})
	}))
	defer srv.Close()

	c := New(srv.URL, staticTokens{tok: "tok"})
	err := c.Post(context.Background(), "/admin/users", map[string]string{"username": "alice"}, nil)

	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("error is %T, want *StatusError", err)
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Error("409 should not match ErrUnauthorized")
	}
	if serr.Detail != "username already exists" {
		t.Errorf("Detail = %q, want backend message", serr.Detail)
	}
}

func TestNew_CallerClientNotMutated(t *testing.T) {
	supplied := &http.Client{}

	// Option order must not matter: the timeout lands on the internal
	// copy, never on the caller's client.
	c := New("https://api.example.com", staticTokens{},
		WithHTTPClient(supplied), WithTimeout(2*time.Second))

	if supplied.Timeout != 0 {
		t.Errorf("caller client Timeout = %v, want untouched zero", supplied.Timeout)
	}
	if supplied.Transport != nil {
		t.Error("caller client Transport was replaced")
	}
	if c.http.Timeout != 2*time.Second {
		t.Errorf("internal Timeout = %v, want 2s", c.http.Timeout)
	}
}

func TestNew_SuppliedClientTimeoutHonored(t *testing.T) {
	c := New("https://api.example.com", staticTokens{},
		WithHTTPClient(&http.Client{Timeout: 3 * time.Second}))

	if c.http.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want the supplied client's 3s", c.http.Timeout)
	}
}

func TestDo_NoRetryOnFailure(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, staticTokens{})
	_ = c.Get(context.Background(), "/twilio/numbers", nil)

	if calls != 1 {
		t.Errorf("server called %d times, want 1 (gateway never retries)", calls)
	}
}
