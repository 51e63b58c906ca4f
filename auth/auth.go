// Package auth implements the console's interactive login flows.
//
// Two flows exist: password login scoped to a tenant, and a one-time code
// flow where the code travels out of band. Both end the same way: the
// returned token and the definitive tenant are installed into the session
// manager, which persists them.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	console "github.com/sipcha/console-go"
	"github.com/sipcha/console-go/audit"
	"github.com/sipcha/console-go/gateway"
	"github.com/sipcha/console-go/metrics"
	"github.com/sipcha/console-go/tenant"
)

// SessionWriter is the slice of session.Manager the service writes to.
type SessionWriter interface {
	Login(token, tenant string) error
	Logout() error
	Tenant() string
}

// Service implements console.AuthService.
type Service struct {
	gw       *gateway.Client
	sessions SessionWriter
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    *audit.Logger
}

// compile-time check
var _ console.AuthService = (*Service)(nil)

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics records login outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithAudit emits session lifecycle audit events.
func WithAudit(a *audit.Logger) Option {
	return func(s *Service) { s.audit = a }
}

// New creates the login service over the API gateway and session state.
func New(gw *gateway.Client, sessions SessionWriter, opts ...Option) *Service {
	s := &Service{
		gw:       gw,
		sessions: sessions,
		logger:   slog.Default(),
		metrics:  metrics.New(false),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse tolerates both token field spellings the backend has
// used across releases.
type loginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
}

func (r loginResponse) token() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}

// Login authenticates with username and password. A login without tenant
// scoping is meaningless to the backend, so an empty slug fails locally
// with tenant.ErrNoTenant before any network I/O.
func (s *Service) Login(ctx context.Context, tenantSlug, username, password string) (console.Session, error) {
	if tenantSlug == "" {
		s.metrics.LoginFailure("password", "no_tenant")
		return console.Session{}, tenant.ErrNoTenant
	}
	s.metrics.LoginAttempt("password")

	path := "/auth/login?" + tenant.Param + "=" + url.QueryEscape(tenantSlug)
	var resp loginResponse
	if err := s.gw.Post(ctx, path, loginRequest{Username: username, Password: password}, &resp); err != nil {
		s.metrics.LoginFailure("password", "rejected")
		s.logEvent(audit.Event{
			Action: audit.ActionLogin, Username: username, Tenant: tenantSlug,
			Result: audit.ResultFailure, Error: err.Error(),
		})
		return console.Session{}, fmt.Errorf("console/auth: login: %w", err)
	}

	tok := resp.token()
	if tok == "" {
		s.metrics.LoginFailure("password", "empty_token")
		return console.Session{}, fmt.Errorf("console/auth: login response carried no token")
	}

	if err := s.sessions.Login(tok, tenantSlug); err != nil {
		return console.Session{}, err
	}
	s.logEvent(audit.Event{
		Action: audit.ActionLogin, Username: username, Tenant: tenantSlug,
		Result: audit.ResultSuccess,
	})
	return console.Session{Token: tok, Tenant: tenantSlug}, nil
}

type codeRequest struct {
	To string `json:"to"`
}

type verifyRequest struct {
	To   string `json:"to"`
	Code string `json:"code"`
}

// RequestCode triggers out-of-band delivery of a one-time code. The
// destination must be E.164; malformed input never reaches the network.
func (s *Service) RequestCode(ctx context.Context, to string) error {
	if !console.ValidE164(to) {
		return console.ErrInvalidPhone
	}
	if err := s.gw.Post(ctx, "/auth/request", codeRequest{To: to}, nil); err != nil {
		return fmt.Errorf("console/auth: request code: %w", err)
	}
	return nil
}

// VerifyCode exchanges a delivered code for a session. The tenant stays
// whatever the session already holds; the code flow does not rescope.
func (s *Service) VerifyCode(ctx context.Context, to, code string) (console.Session, error) {
	s.metrics.LoginAttempt("code")

	var resp loginResponse
	if err := s.gw.Post(ctx, "/auth/verify", verifyRequest{To: to, Code: code}, &resp); err != nil {
		s.metrics.LoginFailure("code", "rejected")
		s.logEvent(audit.Event{
			Action: audit.ActionLogin, Username: to,
			Result: audit.ResultFailure, Error: err.Error(),
		})
		return console.Session{}, fmt.Errorf("console/auth: verify code: %w", err)
	}

	tok := resp.token()
	if tok == "" {
		s.metrics.LoginFailure("code", "empty_token")
		return console.Session{}, fmt.Errorf("console/auth: verify response carried no token")
	}

	cur := s.sessions.Tenant()
	if err := s.sessions.Login(tok, cur); err != nil {
		return console.Session{}, err
	}
	s.logEvent(audit.Event{
		Action: audit.ActionLogin, Username: to, Tenant: cur,
		Result: audit.ResultSuccess, Details: "one-time code",
	})
	return console.Session{Token: tok, Tenant: cur}, nil
}

// Logout clears the session everywhere. Any identity fetch still in
// flight belongs to the previous generation and will be discarded on
// arrival.
func (s *Service) Logout() error {
	if err := s.sessions.Logout(); err != nil {
		return err
	}
	s.logEvent(audit.Event{Action: audit.ActionLogout, Result: audit.ResultSuccess})
	return nil
}

func (s *Service) logEvent(e audit.Event) {
	if s.audit != nil {
		s.audit.Log(e)
	}
}
