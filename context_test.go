package console_test

import (
	"context"
	"testing"

	console "github.com/sipcha/console-go"
)

func TestContextCarriers(t *testing.T) {
	ctx := context.Background()

	if got := console.UsernameFromContext(ctx); got != "" {
		t.Errorf("UsernameFromContext(empty) = %q, want empty", got)
	}

	ctx = console.WithUsername(ctx, "alice")
	ctx = console.WithTenant(ctx, "acme")
	ctx = console.WithRoles(ctx, []string{"admin"})

	if got := console.UsernameFromContext(ctx); got != "alice" {
		t.Errorf("UsernameFromContext() = %q, want alice", got)
	}
	if got := console.TenantFromContext(ctx); got != "acme" {
		t.Errorf("TenantFromContext() = %q, want acme", got)
	}
	if got := console.RolesFromContext(ctx); len(got) != 1 || got[0] != "admin" {
		t.Errorf("RolesFromContext() = %v, want [admin]", got)
	}
}

func TestContextIdentity(t *testing.T) {
	id := &console.Identity{Username: "root", Roles: []string{"superadmin"}}
	ctx := console.WithIdentity(context.Background(), id)

	got := console.IdentityFromContext(ctx)
	if got == nil || got.Username != "root" {
		t.Errorf("IdentityFromContext() = %+v, want root", got)
	}
	if console.IdentityFromContext(context.Background()) != nil {
		t.Error("IdentityFromContext(empty) should be nil")
	}
}
