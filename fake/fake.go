// Package fake provides an in-memory console backend and a fully wired
// client for testing.
//
// The backend is a gin engine speaking the same REST surface as the real
// console API: password and one-time-code login, who-am-i, admin-user
// provisioning, and the telephony lists. It mints HS256 tokens and checks
// bcrypt password hashes, so the client side exercises exactly the paths
// it would against production. Use fake.NewClient() in unit tests to
// avoid sockets and external dependencies.
package fake

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	console "github.com/sipcha/console-go"
)

// DefaultCode is the one-time code the fake backend always delivers.
const DefaultCode = "123456"

type userRecord struct {
	username  string
	hash      []byte
	roles     []string
	phone     string
	updatedAt time.Time
}

type tenantState struct {
	displayName string
	users       map[string]*userRecord
	numbers     []console.Number
	domains     []console.SIPDomain
}

// Server is the in-memory console backend.
type Server struct {
	engine *gin.Engine
	secret []byte

	mu      sync.RWMutex
	tenants map[string]*tenantState
	codes   map[string]string // phone → pending code
}

// Option seeds the fake backend.
type Option func(*Server)

// WithTenant adds a tenant with its display name.
func WithTenant(slug, displayName string) Option {
	return func(s *Server) {
		s.ensureTenant(slug).displayName = displayName
	}
}

// WithAdmin adds an operator identity to a tenant. The password is
// bcrypt-hashed the way the real backend stores it.
func WithAdmin(tenantSlug, username, password string, roles []string) Option {
	return func(s *Server) {
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		s.ensureTenant(tenantSlug).users[username] = &userRecord{
			username:  username,
			hash:      hash,
			roles:     roles,
			updatedAt: time.Now(),
		}
	}
}

// WithAdminPhone links a phone number to an existing operator so the
// one-time-code flow can reach them.
func WithAdminPhone(tenantSlug, username, phone string) Option {
	return func(s *Server) {
		if u, ok := s.ensureTenant(tenantSlug).users[username]; ok {
			u.phone = phone
		}
	}
}

// WithNumber adds a provisioned phone number. An empty ID is filled in.
func WithNumber(tenantSlug string, n console.Number) Option {
	return func(s *Server) {
		if n.ID == "" {
			n.ID = "PN" + uuid.NewString()[:8]
		}
		t := s.ensureTenant(tenantSlug)
		t.numbers = append(t.numbers, n)
	}
}

// WithDomain adds a provisioned SIP domain. An empty SID is filled in.
func WithDomain(tenantSlug string, d console.SIPDomain) Option {
	return func(s *Server) {
		if d.SID == "" {
			d.SID = "SD" + uuid.NewString()[:8]
		}
		t := s.ensureTenant(tenantSlug)
		t.domains = append(t.domains, d)
	}
}

func (s *Server) ensureTenant(slug string) *tenantState {
	t, ok := s.tenants[slug]
	if !ok {
		t = &tenantState{users: make(map[string]*userRecord)}
		s.tenants[slug] = t
	}
	return t
}

// NewServer creates the in-memory backend.
func NewServer(opts ...Option) *Server {
	gin.SetMode(gin.TestMode)
	s := &Server{
		secret:  []byte(uuid.NewString()),
		tenants: make(map[string]*tenantState),
		codes:   make(map[string]string),
	}
	for _, o := range opts {
		o(s)
	}

	e := gin.New()
	e.POST("/auth/login", s.handleLogin)
	e.POST("/auth/request", s.handleRequestCode)
	e.POST("/auth/verify", s.handleVerifyCode)

	authed := e.Group("/", s.requireToken)
	authed.GET("/me", s.handleMe)
	authed.GET("/admin/users", s.handleListAdmins)
	authed.POST("/admin/users", s.handleCreateAdmin)
	authed.GET("/twilio/numbers", s.handleNumbers)
	authed.GET("/twilio/sip/domains", s.handleDomains)

	s.engine = e
	return s
}

// Handler exposes the backend as an http.Handler.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) mintToken(tenantSlug, username string) string {
	claims := jwt.MapClaims{
		"sub":    username,
		"tenant": tenantSlug,
		"exp":    time.Now().Add(time.Hour).Unix(),
		"iat":    time.Now().Unix(),
	}
	tok, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	return tok
}

func (s *Server) parseToken(raw string) (tenantSlug, username string, ok bool) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !tok.Valid {
		return "", "", false
	}
	claims, ok2 := tok.Claims.(jwt.MapClaims)
	if !ok2 {
		return "", "", false
	}
	username, _ = claims["sub"].(string)
	tenantSlug, _ = claims["tenant"].(string)
	return tenantSlug, username, username != ""
}

func (s *Server) requireToken(c *gin.Context) {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "missing bearer token"})
		return
	}
	tenantSlug, username, ok := s.parseToken(strings.TrimPrefix(h, "Bearer "))
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid token"})
		return
	}
	c.Set("tenant", tenantSlug)
	c.Set("username", username)
	c.Next()
}

func (s *Server) handleLogin(c *gin.Context) {
	slug := c.Query("company")
	if slug == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "company query parameter is required"})
		return
	}

	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "malformed request body"})
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenants[slug]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "unknown company"})
		return
	}
	u, ok := t.users[body.Username]
	if !ok || bcrypt.CompareHashAndPassword(u.hash, []byte(body.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": s.mintToken(slug, u.username)})
}

func (s *Server) handleRequestCode(c *gin.Context) {
	var body struct {
		To string `json:"to"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "malformed request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, _, ok := s.userByPhone(body.To); !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "unknown phone"})
		return
	}
	s.codes[body.To] = DefaultCode
	c.Status(http.StatusOK)
}

func (s *Server) handleVerifyCode(c *gin.Context) {
	var body struct {
		To   string `json:"to"`
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "malformed request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	want, pending := s.codes[body.To]
	if !pending || body.Code != want {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "invalid code"})
		return
	}
	delete(s.codes, body.To)

	slug, u, _ := s.userByPhone(body.To)
	c.JSON(http.StatusOK, gin.H{"token": s.mintToken(slug, u.username)})
}

// userByPhone assumes the caller holds at least a read lock.
func (s *Server) userByPhone(phone string) (string, *userRecord, bool) {
	for slug, t := range s.tenants {
		for _, u := range t.users {
			if u.phone != "" && u.phone == phone {
				return slug, u, true
			}
		}
	}
	return "", nil, false
}

func (s *Server) handleMe(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slug := c.GetString("tenant")
	t, ok := s.tenants[slug]
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "unknown tenant"})
		return
	}
	u, ok := t.users[c.GetString("username")]
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "unknown user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":          u.username,
		"roles":             u.roles,
		"tenantDisplayName": t.displayName,
	})
}

func (s *Server) handleListAdmins(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenants[c.GetString("tenant")]
	if !ok {
		c.JSON(http.StatusOK, []console.AdminUser{})
		return
	}

	out := make([]console.AdminUser, 0, len(t.users))
	for _, u := range t.users {
		out = append(out, console.AdminUser{
			Username:  u.username,
			Roles:     u.roles,
			Phone:     u.phone,
			UpdatedAt: u.updatedAt.UTC().Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleCreateAdmin(c *gin.Context) {
	var body console.NewAdminUser
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "malformed request body"})
		return
	}
	if body.Username == "" || body.Password == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "username and password are required"})
		return
	}
	if body.Phone != "" && !console.ValidE164(body.Phone) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "phone must be E.164"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.ensureTenant(c.GetString("tenant"))
	if _, exists := t.users[body.Username]; exists {
		c.JSON(http.StatusConflict, gin.H{"detail": "username already exists"})
		return
	}

	roles := body.Roles
	if len(roles) == 0 {
		roles = []string{console.RoleAdmin}
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.MinCost)
	u := &userRecord{
		username:  body.Username,
		hash:      hash,
		roles:     roles,
		phone:     body.Phone,
		updatedAt: time.Now(),
	}
	t.users[body.Username] = u

	c.JSON(http.StatusCreated, console.AdminUser{
		Username:  u.username,
		Roles:     u.roles,
		Phone:     u.phone,
		UpdatedAt: u.updatedAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleNumbers(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := s.tenants[c.GetString("tenant")]
	items := []console.Number{}
	if t != nil {
		items = append(items, t.numbers...)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (s *Server) handleDomains(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t := s.tenants[c.GetString("tenant")]
	items := []console.SIPDomain{}
	if t != nil {
		items = append(items, t.domains...)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
