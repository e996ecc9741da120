// Package auth provides the credential and token authentication core shared
// by the identity service and any resource service that admits requests with
// the same signing secret.
//
// The package covers secure password storage (bcrypt), unique identity
// enforcement at registration, HS256 bearer token issuance and verification,
// and role based request admission:
//
//   - Users are persisted via Bun with a unique email constraint; the
//     registration path re-checks after a failed insert so a racing writer is
//     always surfaced as a duplicate rather than silently winning twice.
//   - TokenService signs and validates JWT claims. Verification is stateless:
//     a downstream service holding the shared secret can validate tokens
//     without ever reaching the identity store. When a service wants the full
//     identity per request, wrap the validator with NewIdentityResolvingValidator.
//   - AccessGuard decides admit/deny from validated claims plus the role set a
//     route declares. An empty role set admits any authenticated caller.
//
// Transport glue lives in middleware/jwtware (token extraction, validation and
// role checks as go-router middleware) and in the AuthController (JSON register,
// login and profile endpoints).
package auth
