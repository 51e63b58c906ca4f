// Package nav computes the role-gated route set and the default landing
// route.
//
// Route table, menu, and landing logic all derive from one place so they
// cannot drift apart. The policy is a rendering convenience only: the
// backend independently rejects operations the caller's actual role does
// not permit, since client-side menu hiding is trivially bypassable.
package nav

import (
	console "github.com/sipcha/console-go"
)

// Console routes.
const (
	PathDashboard  = "/"
	PathNumbers    = "/numbers"
	PathSIPDomains = "/sip-domains"
	PathAdminUsers = "/admin-users"
)

// operational is the full menu a standard operator sees.
var operational = []console.Route{
	{Path: PathDashboard, Title: "Dashboard"},
	{Path: PathNumbers, Title: "Numbers"},
	{Path: PathSIPDomains, Title: "SIP Domains"},
	{Path: PathAdminUsers, Title: "Admin Users"},
}

// provisioning is all a superadmin sees: their sole responsibility is
// creating and managing admin identities.
var provisioning = []console.Route{
	{Path: PathAdminUsers, Title: "Admin Provisioning"},
}

// RoleSource supplies the best-known role set. The identity resolver
// satisfies it; the set may come from the advisory snapshot before the
// authoritative fetch returns.
type RoleSource interface {
	Roles() []string
	Resolved() bool
}

// Navigator implements console.Navigator.
type Navigator struct {
	roles RoleSource
}

// compile-time check
var _ console.Navigator = (*Navigator)(nil)

// New creates a navigator over the given role source.
func New(roles RoleSource) *Navigator {
	return &Navigator{roles: roles}
}

// Pending reports whether the navigator has nothing to go on: resolution
// is still in flight and no snapshot exists. Callers render a neutral
// loading state instead of guessing a role and flashing the wrong menu.
func (n *Navigator) Pending() bool {
	return !n.roles.Resolved() && len(n.roles.Roles()) == 0
}

// Routes returns the screens visible to the current role set, nil while
// pending.
func (n *Navigator) Routes() []console.Route {
	if n.Pending() {
		return nil
	}
	if n.elevated() {
		return provisioning
	}
	return operational
}

// Landing returns the route the root path resolves to: the provisioning
// screen for the elevated role, the dashboard for everyone else, empty
// while pending.
func (n *Navigator) Landing() string {
	if n.Pending() {
		return ""
	}
	if n.elevated() {
		return PathAdminUsers
	}
	return PathDashboard
}

// Visible reports whether a route is in the current menu.
func (n *Navigator) Visible(path string) bool {
	for _, r := range n.Routes() {
		if r.Path == path {
			return true
		}
	}
	return false
}

func (n *Navigator) elevated() bool {
	for _, r := range n.roles.Roles() {
		if r == console.RoleSuperAdmin {
			return true
		}
	}
	return false
}
