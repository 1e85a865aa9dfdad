// Package audit implements async delivery of session lifecycle events.
//
// # Components
//
//   - [Sink]: interface for event consumers (channel, JSON writer, no-op).
//   - [Dispatcher]: buffered async relay with drop-if-full / block-if-full semantics.
//     Logout and cache-purge events are retained even when the queue is full.
//   - [Event]: structured record with id, timestamp, type, member, outcome, metadata.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which events
// to emit; the Store does.
//
// # What this package must NOT do
//
//   - Import memberauth or any sibling internal package.
//   - Record tokens or passwords in events.
package audit
