package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/memberauth"
	"github.com/MrEthical07/memberauth/cache"
)

const (
	loginPath  = "/auth/login"
	logoutPath = "/auth/logout"

	maxResponseBytes = 1 << 20
)

var (
	// ErrPartialSession is returned by StoredAuth when only one of the two
	// session entries is present.
	ErrPartialSession = errors.New("persisted session is incomplete")
	// ErrInvalidResponse is returned when the server answers 2xx with a body the
	// client cannot use.
	ErrInvalidResponse = errors.New("invalid response from member api")
)

// StatusError reports a non-2xx response that is not a credential rejection.
type StatusError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: member api returned %d: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: member api returned %d", e.Op, e.StatusCode)
}

// Config configures a [Client].
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	TokenKey   string
	AccountKey string
	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client
}

// DefaultConfig returns a Config using the memberauth default cache keys.
func DefaultConfig(baseURL string) Config {
	keys := memberauth.DefaultConfig().Cache
	return Config{
		BaseURL:    baseURL,
		Timeout:    10 * time.Second,
		UserAgent:  "memberauth/1",
		TokenKey:   keys.TokenKey,
		AccountKey: keys.AccountKey,
	}
}

// Client talks to the member API and persists sessions into a cache.
type Client struct {
	base       *url.URL
	http       *http.Client
	userAgent  string
	store      cache.Cache
	tokenKey   string
	accountKey string
}

var _ memberauth.AuthClient = (*Client)(nil)

// New validates cfg and returns a Client persisting into store.
func New(cfg Config, store cache.Cache) (*Client, error) {
	if store == nil {
		return nil, errors.New("api: cache required")
	}
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api: base url must be http or https, got %q", cfg.BaseURL)
	}
	if base.Host == "" {
		return nil, errors.New("api: base url has no host")
	}
	if cfg.TokenKey == "" || cfg.AccountKey == "" {
		return nil, errors.New("api: cache keys required")
	}
	if cfg.TokenKey == cfg.AccountKey {
		return nil, errors.New("api: cache keys must differ")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		base:       base,
		http:       httpClient,
		userAgent:  cfg.UserAgent,
		store:      store,
		tokenKey:   cfg.TokenKey,
		accountKey: cfg.AccountKey,
	}, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Member *memberauth.Account `json:"member"`
	Token  string              `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Login exchanges credentials for a session and persists it. 401 and 403 map to
// memberauth.ErrInvalidCredentials. Nothing is persisted on failure.
func (c *Client) Login(ctx context.Context, email, password string) (*memberauth.AuthResult, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, loginPath, "", body)
	if err != nil {
		return nil, err
	}
	defer drainClose(resp.Body)

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, memberauth.ErrInvalidCredentials
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, statusError("login", resp)
	}

	var out loginResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if out.Token == "" || out.Member == nil || out.Member.ID == 0 {
		return nil, fmt.Errorf("%w: missing member or token", ErrInvalidResponse)
	}

	if err := c.persist(ctx, out.Member, out.Token); err != nil {
		return nil, err
	}

	return &memberauth.AuthResult{Account: out.Member, Token: out.Token}, nil
}

// persist writes the account before the token so a crash in between leaves a
// partial session, which StoredAuth reports and the store purges.
func (c *Client) persist(ctx context.Context, account *memberauth.Account, token string) error {
	encoded, err := EncodeAccount(account)
	if err != nil {
		return err
	}
	if err := c.store.Set(ctx, c.accountKey, encoded); err != nil {
		return fmt.Errorf("persist account: %w", err)
	}
	if err := c.store.Set(ctx, c.tokenKey, []byte(token)); err != nil {
		_ = c.store.Delete(context.WithoutCancel(ctx), c.accountKey)
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

// Logout invalidates the persisted token on the server. Without a persisted
// token there is nothing to invalidate and no request is made. Clearing the
// cache is left to the caller.
func (c *Client) Logout(ctx context.Context) error {
	token, err := c.store.Get(ctx, c.tokenKey)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("read token: %w", err)
	}
	if len(token) == 0 {
		return nil
	}

	resp, err := c.do(ctx, http.MethodPost, logoutPath, string(token), nil)
	if err != nil {
		return err
	}
	defer drainClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError("logout", resp)
	}
	return nil
}

// StoredAuth reads the persisted session. It returns (nil, nil) when neither
// entry exists and ErrPartialSession when only one does.
func (c *Client) StoredAuth(ctx context.Context) (*memberauth.AuthResult, error) {
	token, tokenErr := c.store.Get(ctx, c.tokenKey)
	if tokenErr != nil && !errors.Is(tokenErr, cache.ErrNotFound) {
		return nil, fmt.Errorf("read token: %w", tokenErr)
	}
	rawAccount, accountErr := c.store.Get(ctx, c.accountKey)
	if accountErr != nil && !errors.Is(accountErr, cache.ErrNotFound) {
		return nil, fmt.Errorf("read account: %w", accountErr)
	}

	tokenMissing := tokenErr != nil || len(token) == 0
	accountMissing := accountErr != nil
	switch {
	case tokenMissing && accountMissing:
		return nil, nil
	case tokenMissing || accountMissing:
		return nil, ErrPartialSession
	}

	account, err := DecodeAccount(rawAccount)
	if err != nil {
		return nil, err
	}
	return &memberauth.AuthResult{Account: account, Token: string(token)}, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body []byte) (*http.Response, error) {
	u := c.base.JoinPath(path)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

func statusError(op string, resp *http.Response) error {
	se := &StatusError{Op: op, StatusCode: resp.StatusCode}
	var body errorResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err == nil {
		se.Message = body.Error
	}
	return se
}

func drainClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxResponseBytes))
	_ = body.Close()
}
