package fake

import (
	"net/http"
	"net/http/httptest"

	console "github.com/sipcha/console-go"
	"github.com/sipcha/console-go/auth"
	"github.com/sipcha/console-go/directory"
	"github.com/sipcha/console-go/gateway"
	"github.com/sipcha/console-go/guard"
	"github.com/sipcha/console-go/identity"
	"github.com/sipcha/console-go/nav"
	"github.com/sipcha/console-go/resources"
	"github.com/sipcha/console-go/session"
	"github.com/sipcha/console-go/store"
)

// inprocTransport serves requests straight into the fake engine, no
// sockets involved.
type inprocTransport struct {
	handler http.Handler
}

func (t inprocTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rec := httptest.NewRecorder()
	t.handler.ServeHTTP(rec, req)
	return rec.Result(), nil
}

// ClientOption configures the wired client beyond backend seeding.
type ClientOption func(*clientConfig)

type clientConfig struct {
	store console.TokenStore
}

// WithStore substitutes the token store, letting a test share one store
// across several application loads (client instances).
func WithStore(s console.TokenStore) ClientOption {
	return func(c *clientConfig) { c.store = s }
}

// NewClient creates a *console.Client with every service wired to the
// given in-memory backend. The session is rehydrated from the store, the
// way an application load picks up a persisted token.
func NewClient(srv *Server, opts ...ClientOption) *console.Client {
	cfg := clientConfig{store: store.NewMemory()}
	for _, o := range opts {
		o(&cfg)
	}

	sessions := session.New(cfg.store)
	_, _ = sessions.Rehydrate()

	gw := gateway.New("http://sipcha.fake", sessions,
		gateway.WithHTTPClient(&http.Client{Transport: inprocTransport{handler: srv.Handler()}}),
	)

	resolver := identity.New(identity.NewRESTBackend(gw), sessions)

	c, _ := console.NewClient(console.Config{Endpoint: "http://sipcha.fake"},
		console.WithTokenStore(cfg.store),
		console.WithAuthService(auth.New(gw, sessions)),
		console.WithIdentityService(resolver),
		console.WithSessionGuard(guard.New(sessions, resolver)),
		console.WithNavigator(nav.New(resolver)),
		console.WithAdminUserService(directory.New(gw)),
		console.WithNumberService(resources.NewNumbers(gw)),
		console.WithSIPDomainService(resources.NewDomains(gw)),
	)
	return c
}
