// Package apitest runs an in-process member API for tests and demos.
//
// The server speaks the wire format of package api. Passwords are kept as
// argon2id hashes and tokens are HS256 JWTs whose jti is tracked so logout can
// revoke them. It implements only what the client needs; it is not an
// authentication server.
package apitest

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MrEthical07/memberauth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"
)

// Low-cost argon2id parameters; this server only ever runs in tests.
const (
	argonTime    = 1
	argonMemory  = 8 * 1024
	argonThreads = 1
	argonKeyLen  = 32
	saltLen      = 16
)

type member struct {
	account memberauth.Account
	salt    []byte
	hash    []byte
}

// Claims is the token payload issued on login.
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Server is a fake member API backed by httptest.
type Server struct {
	srv    *httptest.Server
	secret []byte
	ttl    time.Duration
	issuer string

	mu          sync.Mutex
	members     map[string]*member
	sessions    map[string]int64
	failLogout  bool
	failLogin   int
	loginDelay  time.Duration
	loginCalls  int
	logoutCalls int
}

// Option configures a Server.
type Option func(*Server)

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) { s.ttl = ttl }
}

// WithSecret sets the HS256 signing secret.
func WithSecret(secret []byte) Option {
	return func(s *Server) { s.secret = append([]byte(nil), secret...) }
}

// WithLoginDelay delays every login response, for exercising serialization.
func WithLoginDelay(d time.Duration) Option {
	return func(s *Server) { s.loginDelay = d }
}

// NewServer starts a server. Close it when done.
func NewServer(opts ...Option) *Server {
	s := &Server{
		ttl:      time.Hour,
		issuer:   "memberauth-apitest",
		members:  make(map[string]*member),
		sessions: make(map[string]int64),
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.secret) == 0 {
		s.secret = make([]byte, 32)
		if _, err := rand.Read(s.secret); err != nil {
			panic(fmt.Sprintf("apitest: secret: %v", err))
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.handleLogin)
	mux.HandleFunc("POST /auth/logout", s.handleLogout)
	s.srv = httptest.NewServer(mux)
	return s
}

// URL returns the base URL to configure api.Client with.
func (s *Server) URL() string {
	return s.srv.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.srv.Close()
}

// AddMember registers an account that can log in with password.
func (s *Server) AddMember(account memberauth.Account, password string) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		panic(fmt.Sprintf("apitest: salt: %v", err))
	}
	m := &member{
		account: account,
		salt:    salt,
		hash:    argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[strings.ToLower(account.Email)] = m
}

// FailLogout makes logout answer 503 while enabled.
func (s *Server) FailLogout(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLogout = fail
}

// FailNextLogins makes the next n logins answer 500.
func (s *Server) FailNextLogins(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLogin = n
}

// ActiveSessions returns the number of issued, unrevoked tokens.
func (s *Server) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Calls returns how many login and logout requests were served.
func (s *Server) Calls() (login, logout int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loginCalls, s.logoutCalls
}

// ParseToken verifies a token issued by this server.
func (s *Server) ParseToken(token string) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	parsed, err := parser.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func (s *Server) issue(account memberauth.Account) (string, string, error) {
	now := time.Now()
	jti := uuid.NewString()
	claims := Claims{
		Email: account.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.FormatInt(account.ID, 10),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", err
	}
	return signed, jti, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.loginCalls++
	delay := s.loginDelay
	fail := s.failLogin > 0
	if fail {
		s.failLogin--
	}
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if fail {
		writeError(w, http.StatusInternalServerError, "temporarily unavailable")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	s.mu.Lock()
	m, ok := s.members[strings.ToLower(req.Email)]
	s.mu.Unlock()
	if !ok || req.Password == "" {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	computed := argon2.IDKey([]byte(req.Password), m.salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	if subtle.ConstantTimeCompare(computed, m.hash) != 1 {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, jti, err := s.issue(m.account)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token issue failed")
		return
	}

	s.mu.Lock()
	s.sessions[jti] = m.account.ID
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"member": m.account,
		"token":  token,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.logoutCalls++
	fail := s.failLogout
	s.mu.Unlock()

	if fail {
		writeError(w, http.StatusServiceUnavailable, "logout unavailable")
		return
	}

	raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || raw == "" {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	claims, err := s.ParseToken(raw)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	s.mu.Lock()
	delete(s.sessions, claims.ID)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
