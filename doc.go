// Package memberauth provides the client-side session lifecycle for member-facing
// applications: it remembers which member is signed in, restores that state from a
// durable local cache at startup, and signs members in and out through a remote API.
//
// The package is designed for long-lived client processes (CLIs, desktop agents,
// background sync daemons). [Store] methods are safe to call from multiple goroutines
// after construction through [Builder.Build].
//
// # Architecture boundaries
//
// memberauth is the public surface. It exposes [Store], [Builder], [Config], and value
// types ([Snapshot], [Account], [AuthResult]). Credential exchange is delegated to an
// [AuthClient] (see the api sub-package), durable storage to a [cache.Cache]. Restore, login and
// logout orchestration lives in this package; audit dispatch lives under internal/.
//
// # What this package must NOT do
//
//   - Validate credentials locally or interpret remote failures beyond wrapping them.
//   - Refresh tokens, retry network calls, or evaluate permissions.
//   - Keep a package-level session; callers pass the [Store] explicitly
//     (see [WithStore]).
//
// # State contract
//
// Account and token are always set and cleared together. Logout clears local state
// even when the remote call fails.
package memberauth
