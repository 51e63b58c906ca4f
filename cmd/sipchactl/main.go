// Package main provides the sipchactl binary entry point.
// Sipchactl drives a SIPCHA admin console session from the terminal:
// it logs in against the API gateway, persists the token to disk and
// exposes the tenant's directory and telephony resources.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	console "github.com/sipcha/console-go"
	"github.com/sipcha/console-go/audit"
	"github.com/sipcha/console-go/auth"
	"github.com/sipcha/console-go/directory"
	"github.com/sipcha/console-go/gateway"
	"github.com/sipcha/console-go/guard"
	"github.com/sipcha/console-go/identity"
	"github.com/sipcha/console-go/metrics"
	"github.com/sipcha/console-go/nav"
	"github.com/sipcha/console-go/resources"
	"github.com/sipcha/console-go/session"
	"github.com/sipcha/console-go/store"
)

const appName = "sipchactl"

// Version is stamped at build time via -ldflags.
var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	client   *console.Client
	auth     *auth.Service
	sessions *session.Manager
	resolver *identity.Resolver
	nav      *nav.Navigator
	auditor  *audit.Logger
	tenant   string
}

// Close flushes the audit queue, if one was started.
func (a *app) Close() error {
	if a.auditor != nil {
		return a.auditor.Close()
	}
	return nil
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		endpoint   string
		company    string
		storePath  string
		logLevel   string
		auditLog   bool
		metricsOn  bool
	)

	cmd := &cobra.Command{
		Use:   appName,
		Short: "SIPCHA admin console from the command line",
		Long: `Sipchactl operates a SIPCHA subaccount the way the admin console does:
log in once, then list and provision admin users, phone numbers and SIP
domains. The session token is persisted so subsequent invocations reuse it.`,
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", defaultConfigPath(), "Config file path (YAML)")
	pf.StringVar(&endpoint, "endpoint", "", "API gateway endpoint (overrides config and environment)")
	pf.StringVar(&company, "company", "", "Tenant slug the session belongs to")
	pf.StringVar(&storePath, "store", "", "Session store file path")
	pf.StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	pf.BoolVar(&auditLog, "audit", false, "Emit JSON audit events to stdout")
	pf.BoolVar(&metricsOn, "metrics", false, "Register Prometheus metrics on the default registry")

	build := func() (*app, error) {
		return buildApp(configPath, endpoint, company, storePath, logLevel, auditLog, metricsOn)
	}

	cmd.AddCommand(
		loginCmd(build),
		logoutCmd(build),
		whoamiCmd(build),
		routesCmd(build),
		numbersCmd(build),
		domainsCmd(build),
		adminsCmd(build),
		versionCmd(),
	)
	return cmd
}

func buildApp(configPath, endpoint, company, storePath, logLevel string, auditLog, metricsOn bool) (*app, error) {
	logger := newLogger(logLevel)

	cfg, err := console.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if endpoint == "" {
		endpoint = cfg.Endpoint
	}
	if company == "" {
		company = cfg.Tenant
	}
	if storePath == "" {
		storePath = cfg.StorePath
	}
	if storePath == "" {
		storePath = defaultStorePath()
	}

	tokens := store.NewFile(storePath)
	sessions := session.New(tokens)
	if _, err := sessions.Rehydrate(); err != nil {
		logger.Warn("session rehydration failed", "path", storePath, "error", err)
	}

	resolved := gateway.ResolveEndpoint(endpoint, "")
	// Without an origin the same-origin fallback yields a relative path
	// the transport cannot dial; fail with instructions instead.
	if !strings.Contains(resolved, "://") {
		return nil, fmt.Errorf("%s: no API endpoint configured; set --endpoint, the endpoint config key, or %s",
			appName, console.EnvEndpoint)
	}

	gwOpts := []gateway.Option{gateway.WithLogger(logger)}
	if cfg.RequestTimeout > 0 {
		gwOpts = append(gwOpts, gateway.WithTimeout(cfg.RequestTimeout))
	}
	gw := gateway.New(resolved, sessions, gwOpts...)

	authOpts := []auth.Option{auth.WithLogger(logger)}
	dirOpts := []directory.Option{directory.WithLogger(logger)}
	idOpts := []identity.Option{identity.WithLogger(logger)}
	guardOpts := []guard.Option{guard.WithLogger(logger)}
	var auditor *audit.Logger
	if auditLog {
		auditor = audit.New(0, audit.WithStdoutHandler())
		authOpts = append(authOpts, auth.WithAudit(auditor))
		dirOpts = append(dirOpts, directory.WithAudit(auditor))
		idOpts = append(idOpts, identity.WithAudit(auditor))
		guardOpts = append(guardOpts, guard.WithAudit(auditor))
	}
	if metricsOn {
		m := metrics.New(true)
		authOpts = append(authOpts, auth.WithMetrics(m))
		idOpts = append(idOpts, identity.WithMetrics(m))
		guardOpts = append(guardOpts, guard.WithMetrics(m))
	}

	resolver := identity.New(identity.NewRESTBackend(gw), sessions, idOpts...)
	authSvc := auth.New(gw, sessions, authOpts...)
	navigator := nav.New(resolver)

	client, err := console.NewClient(console.Config{Endpoint: resolved},
		console.WithLogger(logger),
		console.WithTokenStore(tokens),
		console.WithAuthService(authSvc),
		console.WithIdentityService(resolver),
		console.WithSessionGuard(guard.New(sessions, resolver, guardOpts...)),
		console.WithNavigator(navigator),
		console.WithAdminUserService(directory.New(gw, dirOpts...)),
		console.WithNumberService(resources.NewNumbers(gw)),
		console.WithSIPDomainService(resources.NewDomains(gw)),
	)
	if err != nil {
		return nil, err
	}

	return &app{
		client:   client,
		auth:     authSvc,
		sessions: sessions,
		resolver: resolver,
		nav:      navigator,
		auditor:  auditor,
		tenant:   company,
	}, nil
}

func loginCmd(build func() (*app, error)) *cobra.Command {
	var (
		username string
		password string
		phone    string
		code     string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and persist the session token",
		Long: `Log in with a username and password, or with a one-time code sent by
SMS. Requesting a code and verifying it are two invocations:

  sipchactl login --phone +16045551234
  sipchactl login --phone +16045551234 --code 123456`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}
			defer a.Close()
			ctx := cmd.Context()

			if phone != "" {
				if code == "" {
					if err := a.auth.RequestCode(ctx, phone); err != nil {
						return err
					}
					fmt.Printf("Code sent to %s. Re-run with --code to finish.\n", phone)
					return nil
				}
				sess, err := a.auth.VerifyCode(ctx, phone, code)
				if err != nil {
					return err
				}
				fmt.Printf("Logged in (tenant %q).\n", sess.Tenant)
				return nil
			}

			if username == "" || password == "" {
				return fmt.Errorf("%s: --username and --password are required for password login", appName)
			}
			sess, err := a.auth.Login(ctx, a.tenant, username, password)
			if err != nil {
				return err
			}
			fmt.Printf("Logged in as %s (tenant %q).\n", username, sess.Tenant)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username for password login")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password for password login")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number (E.164) for one-time-code login")
	cmd.Flags().StringVar(&code, "code", "", "One-time code received by SMS")
	return cmd
}

func logoutCmd(build func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.auth.Logout(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func whoamiCmd(build func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}
			defer a.Close()
			id, err := a.resolver.Current(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Username: %s\n", id.Username)
			fmt.Printf("Roles:    %s\n", strings.Join(id.Roles, ", "))
			if id.TenantDisplayName != "" {
				fmt.Printf("Tenant:   %s\n", id.TenantDisplayName)
			}
			return nil
		},
	}
}

func routesCmd(build func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the screens this identity may navigate to",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}
			defer a.Close()
			if _, err := a.resolver.Current(cmd.Context()); err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, r := range a.nav.Routes() {
				fmt.Fprintf(w, "%s\t%s\n", r.Path, r.Title)
			}
			fmt.Fprintf(w, "\nLanding: %s\n", a.nav.Landing())
			return w.Flush()
		},
	}
}

func numbersCmd(build func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "numbers",
		Short: "List the tenant's provisioned phone numbers",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}
			defer a.Close()
			nums, err := a.client.Numbers().List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNUMBER\tLABEL")
			for _, n := range nums {
				fmt.Fprintf(w, "%s\t%s\t%s\n", n.ID, n.E164, n.Label)
			}
			return w.Flush()
		},
	}
}

func domainsCmd(build func() (*app, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "domains",
		Short: "List the tenant's SIP domains",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}
			defer a.Close()
			doms, err := a.client.Domains().List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SID\tDOMAIN\tNAME")
			for _, d := range doms {
				fmt.Fprintf(w, "%s\t%s\t%s\n", d.SID, d.DomainName, d.FriendlyName)
			}
			return w.Flush()
		},
	}
}

func adminsCmd(build func() (*app, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admins",
		Short: "Manage the subaccount's admin users",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List admin users",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}
			defer a.Close()
			users, err := a.client.Admins().List(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "USERNAME\tROLES\tPHONE\tUPDATED")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					u.Username, strings.Join(u.Roles, ","), u.Phone, u.UpdatedAt)
			}
			return w.Flush()
		},
	})

	var (
		username string
		password string
		phone    string
		roles    []string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an admin user in the subaccount",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := build()
			if err != nil {
				return err
			}
			defer a.Close()
			u, err := a.client.Admins().Create(cmd.Context(), console.NewAdminUser{
				Username: username,
				Password: password,
				Phone:    phone,
				Roles:    roles,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Created %s (%s).\n", u.Username, strings.Join(u.Roles, ","))
			return nil
		},
	}
	create.Flags().StringVarP(&username, "username", "u", "", "Username for the new admin")
	create.Flags().StringVarP(&password, "password", "p", "", "Password for the new admin")
	create.Flags().StringVar(&phone, "phone", "", "Phone number in E.164 form")
	create.Flags().StringSliceVar(&roles, "roles", nil, "Roles to assign (default admin)")
	_ = create.MarkFlagRequired("username")
	_ = create.MarkFlagRequired("password")
	cmd.AddCommand(create)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", appName, Version)
		},
	}
}

func newLogger(level string) *slog.Logger {
	lvl := slog.LevelWarn
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "sipcha", "sipcha.yaml")
}

func defaultStorePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "sipcha", "session.json")
}
