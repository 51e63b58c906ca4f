package console

// Well-known role names. Any tenant-defined role string is also valid;
// these two are the only ones the navigator gives special meaning to.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Session is the client's belief about its own authentication state.
// The token is an opaque bearer credential; the client never inspects
// or expires it locally.
type Session struct {
	Token  string
	Tenant string
}

// Authenticated reports whether a token is present. It says nothing about
// whether the backend still accepts it.
func (s Session) Authenticated() bool { return s.Token != "" }

// Identity is the resolved server-side truth about the current principal.
type Identity struct {
	Username          string
	Roles             []string
	TenantDisplayName string
}

// HasRole reports whether the identity carries the named role.
func (id *Identity) HasRole(name string) bool {
	if id == nil {
		return false
	}
	for _, r := range id.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// AdminUser is an operator identity as returned by the provisioning API.
type AdminUser struct {
	Username  string   `json:"username"`
	Roles     []string `json:"roles"`
	Phone     string   `json:"phone,omitempty"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

// NewAdminUser is the payload for creating an operator identity.
// Roles defaults to ["admin"] when empty: a superadmin provisions regular
// admins unless told otherwise.
type NewAdminUser struct {
	Username string   `json:"username"`
	Password string   `json:"password"`
	Phone    string   `json:"phone,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// Number is a provisioned phone number.
type Number struct {
	ID    string `json:"id"`
	E164  string `json:"e164"`
	Label string `json:"label"`
}

// SIPDomain is a provisioned SIP domain.
type SIPDomain struct {
	SID          string `json:"sid"`
	DomainName   string `json:"domain_name"`
	FriendlyName string `json:"friendly_name"`
}

// StoredSession is the whole-value record kept in durable storage.
// Roles is the advisory role snapshot: it may gate rendering, never data
// access, and is overwritten whenever the authoritative identity fetch
// returns.
type StoredSession struct {
	Token  string   `json:"token,omitempty"`
	Tenant string   `json:"tenant,omitempty"`
	Roles  []string `json:"roles,omitempty"`
}

// NavigationRequest is an attempted transition to a route. RawQuery is the
// current query string; it rides along on redirects so the tenant
// parameter survives a bounce to the login screen.
type NavigationRequest struct {
	Path     string
	RawQuery string
}

// Decision is the outcome of guarding a navigation request.
type Decision struct {
	Allow      bool
	RedirectTo string
}

// Route is a navigable screen with its menu label.
type Route struct {
	Path  string
	Title string
}
