package console_test

import (
	"testing"
	"time"

	console "github.com/sipcha/console-go"
	"github.com/sipcha/console-go/store"
)

func TestNewClient_RequiresTokenStore(t *testing.T) {
	_, err := console.NewClient(console.Config{})
	if err == nil {
		t.Fatal("NewClient() expected error without a TokenStore")
	}
}

func TestNewClient_DefaultTimeout(t *testing.T) {
	c, err := console.NewClient(console.Config{}, console.WithTokenStore(store.NewMemory()))
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if c.Config().RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want default 10s", c.Config().RequestTimeout)
	}
}

func TestNewClient_CustomTimeout(t *testing.T) {
	c, err := console.NewClient(console.Config{RequestTimeout: 3 * time.Second},
		console.WithTokenStore(store.NewMemory()))
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if c.Config().RequestTimeout != 3*time.Second {
		t.Errorf("RequestTimeout = %v, want 3s", c.Config().RequestTimeout)
	}
}

func TestNewClient_NilServicesBeforeInjection(t *testing.T) {
	c, _ := console.NewClient(console.Config{}, console.WithTokenStore(store.NewMemory()))

	if c.Auth() != nil {
		t.Error("Auth() should be nil before injection")
	}
	if c.Identity() != nil {
		t.Error("Identity() should be nil before injection")
	}
	if c.Guard() != nil {
		t.Error("Guard() should be nil before injection")
	}
	if c.Navigator() != nil {
		t.Error("Navigator() should be nil before injection")
	}
	if c.Admins() != nil {
		t.Error("Admins() should be nil before injection")
	}
}

func TestSession_ReadsStore(t *testing.T) {
	st := store.NewMemory()
	_ = st.Save(console.StoredSession{Token: "tok", Tenant: "acme"})

	c, _ := console.NewClient(console.Config{}, console.WithTokenStore(st))
	sess, err := c.Session()
	if err != nil {
		t.Fatalf("Session() error: %v", err)
	}
	if !sess.Authenticated() || sess.Tenant != "acme" {
		t.Errorf("Session() = %+v, want authenticated acme session", sess)
	}
}

func TestHasRole(t *testing.T) {
	id := &console.Identity{Roles: []string{"admin", "billing"}}

	if !id.HasRole("admin") || id.HasRole("superadmin") {
		t.Errorf("HasRole mismatch for %v", id.Roles)
	}
	var nilID *console.Identity
	if nilID.HasRole("admin") {
		t.Error("nil identity must have no roles")
	}
}
