// Package api is the HTTP client for the member API. [Client] implements
// memberauth.AuthClient: it exchanges credentials for a session, persists the
// session into a cache.Cache, notifies the server on logout, and reads the
// persisted session back at startup.
//
// Wire format:
//
//	POST {base}/auth/login   {"email":"...","password":"..."} -> {"member":{...},"token":"..."}
//	POST {base}/auth/logout  Authorization: Bearer <token>    -> 204
//
// The client performs no retries; the caller's context and Config.Timeout bound
// every request.
package api
