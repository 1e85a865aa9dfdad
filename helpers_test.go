package memberauth

import (
	"context"
	"sync"
	"testing"

	"github.com/MrEthical07/memberauth/cache"
)

// fakeClient is a scripted AuthClient.
type fakeClient struct {
	mu sync.Mutex

	stored    *AuthResult
	storedErr error

	loginResult *AuthResult
	loginErr    error
	logoutErr   error

	// loginGate, when set, blocks Login until it is closed. loginStarted is
	// signalled when Login begins.
	loginGate    chan struct{}
	loginStarted chan struct{}

	storedCalls int
	loginCalls  int
	logoutCalls int
}

func (f *fakeClient) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	f.mu.Lock()
	f.loginCalls++
	gate, started := f.loginGate, f.loginStarted
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	if f.loginResult == nil {
		return nil, nil
	}
	return &AuthResult{Account: f.loginResult.Account.clone(), Token: f.loginResult.Token}, nil
}

func (f *fakeClient) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	return f.logoutErr
}

func (f *fakeClient) StoredAuth(ctx context.Context) (*AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.storedCalls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.stored, f.storedErr
}

func (f *fakeClient) calls() (stored, login, logout int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.storedCalls, f.loginCalls, f.logoutCalls
}

func (f *fakeClient) setLogin(result *AuthResult, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginResult = result
	f.loginErr = err
}

// failingCache wraps MemoryCache and fails deletes on demand.
type failingCache struct {
	*cache.MemoryCache
	deleteErr error
}

func (c *failingCache) Delete(ctx context.Context, keys ...string) error {
	if c.deleteErr != nil {
		return c.deleteErr
	}
	return c.MemoryCache.Delete(ctx, keys...)
}

func buildTestStore(t *testing.T, client AuthClient, c Cache, mutate func(*Builder)) *Store {
	t.Helper()
	b := New().WithClient(client).WithCache(c)
	if mutate != nil {
		mutate(b)
	}
	s, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func seedCache(t *testing.T, c Cache, token, account string) {
	t.Helper()
	ctx := context.Background()
	if err := c.Set(ctx, defaultTokenKey, []byte(token)); err != nil {
		t.Fatalf("seed token: %v", err)
	}
	if err := c.Set(ctx, defaultAccountKey, []byte(account)); err != nil {
		t.Fatalf("seed account: %v", err)
	}
}

func assertKeysGone(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()
	for _, k := range []string{defaultTokenKey, defaultAccountKey} {
		if _, err := c.Get(ctx, k); err != cache.ErrNotFound {
			t.Fatalf("expected %s purged, got err=%v", k, err)
		}
	}
}

func assertWhole(t *testing.T, snap Snapshot) {
	t.Helper()
	if (snap.Account == nil) != (snap.Token == "") {
		t.Fatalf("half-authenticated snapshot observed: %+v", snap)
	}
}
