// Package cache provides the durable key-value surface that persists a member
// session across process restarts.
//
// # Backends
//
//   - [FileCache] keeps one file per key in a private directory (desktop and CLI use).
//   - [RedisCache] keeps keys in Redis under a prefix (shared agents, containers).
//   - [MemoryCache] keeps keys in process memory (tests, ephemeral sessions).
//
// # Architecture boundaries
//
// This package stores opaque bytes. It does NOT know what a token or an account
// looks like; encoding belongs to the API client that writes the entries.
//
// # What this package must NOT do
//
//   - Import memberauth or api (no upward imports).
//   - Log or otherwise expose stored values.
package cache
