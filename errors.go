package memberauth

import "errors"

var (
	// ErrInvalidCredentials is returned by an AuthClient when the remote API rejects
	// the email/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLoginFailed matches every error returned by [Store.Login].
	ErrLoginFailed = errors.New("login failed")
	// ErrIncompleteSession is returned when a credential exchange yields an account
	// without a token or a token without an account.
	ErrIncompleteSession = errors.New("incomplete session returned by auth client")
	// ErrRemoteLogout matches the error returned by [Store.Logout] when the remote
	// notification failed. Local state is cleared regardless.
	ErrRemoteLogout = errors.New("remote logout failed")
	// ErrCacheCorrupt matches restore failures caused by an unreadable or malformed cache.
	ErrCacheCorrupt = errors.New("session cache corrupt")
	// ErrStoreClosed is returned by operations invoked after [Store.Close].
	ErrStoreClosed = errors.New("session store closed")
	// ErrStoreNotReady is returned when a zero or nil Store is used.
	ErrStoreNotReady = errors.New("session store not initialized")
)

// CacheCorruptionError reports that the persisted session could not be restored.
// The store recovers by purging the cache; the error is only surfaced through
// [Store.RestoreErr] and logs.
type CacheCorruptionError struct {
	Err      error
	PurgeErr error
}

func (e *CacheCorruptionError) Error() string {
	msg := "session cache corrupt"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.PurgeErr != nil {
		msg += " (purge failed: " + e.PurgeErr.Error() + ")"
	}
	return msg
}

func (e *CacheCorruptionError) Unwrap() []error {
	return []error{ErrCacheCorrupt, e.Err}
}

// CredentialError wraps the collaborator's login failure without translating it.
type CredentialError struct {
	Email string
	Err   error
}

func (e *CredentialError) Error() string {
	if e.Err == nil {
		return "login failed"
	}
	return "login failed: " + e.Err.Error()
}

func (e *CredentialError) Unwrap() []error {
	return []error{ErrLoginFailed, e.Err}
}

// RemoteLogoutError wraps the collaborator's logout failure. When it is returned
// the local session has already been cleared.
type RemoteLogoutError struct {
	Err error
}

func (e *RemoteLogoutError) Error() string {
	if e.Err == nil {
		return "remote logout failed"
	}
	return "remote logout failed: " + e.Err.Error()
}

func (e *RemoteLogoutError) Unwrap() []error {
	return []error{ErrRemoteLogout, e.Err}
}
