package memberauth

import (
	"context"

	"github.com/MrEthical07/memberauth/cache"
)

// Account is the member record returned by the remote API on login and
// persisted alongside the token.
type Account struct {
	ID        int64  `json:"id"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

func (a *Account) clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// AuthResult is the account/token pair produced by a credential exchange or
// read back from the durable cache.
type AuthResult struct {
	Account *Account
	Token   string
}

func (r *AuthResult) complete() bool {
	return r != nil && r.Account != nil && r.Token != ""
}

// AuthClient is the remote API collaborator consumed by [Store].
//
// Login exchanges credentials for an account and token and is responsible for
// persisting them. Logout notifies the remote side; the store clears local state
// regardless of its outcome. StoredAuth reads a previously persisted session and
// returns (nil, nil) when nothing is stored.
type AuthClient interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context) error
	StoredAuth(ctx context.Context) (*AuthResult, error)
}

// Cache is the durable key-value surface the store purges on corruption and on logout.
type Cache = cache.Cache

// State is the lifecycle state of a [Store].
type State uint8

const (
	// StateInitializing is reported until the startup restore has completed.
	StateInitializing State = iota
	// StateUnauthenticated means no member is signed in.
	StateUnauthenticated
	// StateAuthenticated means an account and token are installed.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable copy of the session as seen by consumers.
type Snapshot struct {
	Account      *Account
	Token        string
	Initializing bool
}

// State derives the lifecycle state from the snapshot.
func (s Snapshot) State() State {
	switch {
	case s.Initializing:
		return StateInitializing
	case s.Account != nil && s.Token != "":
		return StateAuthenticated
	default:
		return StateUnauthenticated
	}
}

// Authenticated reports whether both account and token are present.
func (s Snapshot) Authenticated() bool {
	return s.State() == StateAuthenticated
}

// Listener receives the new snapshot after every state change.
type Listener func(Snapshot)
