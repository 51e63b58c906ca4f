package directory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	console "github.com/sipcha/console-go"
	"github.com/sipcha/console-go/gateway"
)

type staticTokens struct{ tok string }

func (s staticTokens) Token() (string, bool) { return s.tok, s.tok != "" }

func newService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(gateway.New(srv.URL, staticTokens{tok: "tok"}))
}

func TestValidE164(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+16045551234", true},
		{"6045551234", false},   // missing leading +
		{"+0123456789", false},  // leading digit cannot be 0
		{"+1234567", true},      // minimum length
		{"+123456789012345", true},
		{"+1234567890123456", false}, // too long
		{"+123456", false},           // too short
		{"", false},
	}
	for _, tt := range tests {
		if got := console.ValidE164(tt.phone); got != tt.want {
			t.Errorf("ValidE164(%q) = %v, want %v", tt.phone, got, tt.want)
		}
	}
}

func TestList_SortedByUsername(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]console.AdminUser{
			{Username: "carol", Roles: []string{"admin"}},
			{Username: "alice", Roles: []string{"superadmin"}},
			{Username: "bob", Roles: []string{"admin"}},
		})
	}))

	users, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}

	want := []string{"alice", "bob", "carol"}
	for i, u := range users {
		if u.Username != want[i] {
			t.Errorf("users[%d] = %q, want %q", i, u.Username, want[i])
		}
	}
}

func TestList_UnauthorizedDegradesToEmpty(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	users, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v, want degradation", err)
	}
	if len(users) != 0 {
		t.Errorf("List() = %v, want empty", users)
	}
}

func TestCreate_DefaultsToAdminRole(t *testing.T) {
	var gotRoles []string
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body console.NewAdminUser
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotRoles = body.Roles
		_ = json.NewEncoder(w).Encode(console.AdminUser{Username: body.Username, Roles: body.Roles})
	}))

	created, err := svc.Create(context.Background(), console.NewAdminUser{
		Username: "dave", Password: "pw", Phone: "+16045551234",
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if len(gotRoles) != 1 || gotRoles[0] != "admin" {
		t.Errorf("sent roles = %v, want default [admin]", gotRoles)
	}
	if created.Username != "dave" {
		t.Errorf("created = %+v, want dave", created)
	}
}

func TestCreate_LocalValidation(t *testing.T) {
	called := false
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	tests := []struct {
		name string
		in   console.NewAdminUser
		want error
	}{
		{"missing username", console.NewAdminUser{Password: "pw"}, ErrUsernameRequired},
		{"missing password", console.NewAdminUser{Username: "u"}, ErrPasswordRequired},
		{"bad phone", console.NewAdminUser{Username: "u", Password: "pw", Phone: "012345"}, console.ErrInvalidPhone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("Create() error = %v, want %v", err, tt.want)
			}
		})
	}
	if called {
		t.Error("validation failures must not reach the network")
	}
}

func TestCreate_ConflictSurfacesBackendMessage(t *testing.T) {
	svc := newService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "user exists in this subaccount"})
	}))

	_, err := svc.Create(context.Background(), console.NewAdminUser{Username: "dupe", Password: "pw"})
	if err == nil {
		t.Fatal("Create() expected error")
	}

	var serr *gateway.StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("error is %T, want *StatusError so the dialog can show it", err)
	}
	if serr.Detail != "user exists in this subaccount" {
		t.Errorf("Detail = %q, want backend message verbatim", serr.Detail)
	}
}
