// Package session owns the portal's authenticated session.
//
// The Store keeps the current user in memory, mirrors it into durable
// storage under the "currentUser" key and broadcasts every change to
// subscribers. It is the single source of truth for "who is logged in":
// the auth interceptor reads the bearer token from it, the route guards
// ask it about authentication and roles, and the error interceptor ends the
// session through it on a 401.
//
// # Backends
//
// Network work is delegated to two collaborators chosen at construction:
//
//   - Authenticator handles login, registration and profile updates. Either
//     the users service over HTTP or the local mock backend serves it.
//   - Recovery handles password recovery, reset and change. Only the mock
//     backend implements these flows.
//
// # Errors
//
// Failures are reported with typed errors so callers can branch with
// errors.As: *AuthenticationError, *RegistrationError, *NotFoundError and
// *ValidationError. Their Error() text is suitable for display.
package session
