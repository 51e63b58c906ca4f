// Package directory is the operator-identity provisioning client.
//
// It is the one screen the elevated provisioning role can reach. Create
// validates locally before any network call; backend rejections carry
// their message through so the create dialog can display it instead of
// closing silently.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	console "github.com/sipcha/console-go"
	"github.com/sipcha/console-go/audit"
	"github.com/sipcha/console-go/gateway"
)

// Local validation failures, caught before the network.
var (
	ErrUsernameRequired = errors.New("console/directory: username is required")
	ErrPasswordRequired = errors.New("console/directory: password is required")
)

// Service implements console.AdminUserService.
type Service struct {
	gw     *gateway.Client
	logger *slog.Logger
	audit  *audit.Logger
}

// compile-time check
var _ console.AdminUserService = (*Service)(nil)

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithAudit emits provisioning audit events.
func WithAudit(a *audit.Logger) Option {
	return func(s *Service) { s.audit = a }
}

// New creates the provisioning client over the API gateway.
func New(gw *gateway.Client, opts ...Option) *Service {
	s := &Service{gw: gw, logger: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// List returns all operator identities sorted by username. A silently
// expired token degrades to an empty list so the table renders instead of
// crashing; the user discovers the expiry on their next action.
func (s *Service) List(ctx context.Context) ([]console.AdminUser, error) {
	var users []console.AdminUser
	if err := s.gw.Get(ctx, "/admin/users", &users); err != nil {
		if errors.Is(err, gateway.ErrUnauthorized) {
			s.logger.Debug("admin list unauthorized, degrading to empty")
			return []console.AdminUser{}, nil
		}
		return nil, fmt.Errorf("console/directory: list: %w", err)
	}

	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })
	return users, nil
}

// Create provisions a new operator identity. Roles defaults to ["admin"]:
// a superadmin provisions regular admins unless told otherwise. Backend
// failures (conflict, validation) propagate with their detail intact.
func (s *Service) Create(ctx context.Context, u console.NewAdminUser) (*console.AdminUser, error) {
	if u.Username == "" {
		return nil, ErrUsernameRequired
	}
	if u.Password == "" {
		return nil, ErrPasswordRequired
	}
	if u.Phone != "" && !console.ValidE164(u.Phone) {
		return nil, console.ErrInvalidPhone
	}
	if len(u.Roles) == 0 {
		u.Roles = []string{console.RoleAdmin}
	}

	var created console.AdminUser
	if err := s.gw.Post(ctx, "/admin/users", u, &created); err != nil {
		s.logEvent(audit.Event{
			Action: audit.ActionAdminProvision, Username: u.Username,
			Result: audit.ResultFailure, Error: err.Error(),
		})
		return nil, fmt.Errorf("console/directory: create: %w", err)
	}

	s.logEvent(audit.Event{
		Action: audit.ActionAdminProvision, Username: u.Username,
		Result: audit.ResultSuccess,
	})
	return &created, nil
}

func (s *Service) logEvent(e audit.Event) {
	if s.audit != nil {
		s.audit.Log(e)
	}
}
