// Package auth is the credential and access-control core for a REST
// backend: registration and login flows, bcrypt password hashing, signed
// token lifecycle, and a declarative role guard.
//
// Pipeline:
//   - TokenServiceImpl signs and validates HS256 JWTs carrying only an
//     identity reference (uid). Roles and account status are never embedded
//     in tokens.
//   - TokenAuthStrategy re-fetches the user record on every authenticated
//     request and rejects inactive accounts, so deactivation and role
//     changes take effect on the next request rather than at token expiry.
//   - RoleRegistry holds per-route role requirements declared at startup;
//     RouteAuthenticator composes the authentication middleware and the
//     role guard explicitly per protected route.
//
// The Users repository is a Bun-backed reference implementation of the
// store adapter contract; any store enforcing a unique-email constraint
// can replace it.
package auth
