// Package internal holds helpers private to memberauth.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - logging: zerolog construction for the memberctl binary
//
// # What this package must NOT do
//
//   - Export types that appear in the public memberauth API other than through
//     aliases declared in the root package.
package internal
