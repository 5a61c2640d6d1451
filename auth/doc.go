// Package auth holds the contracts of the storefront session core.
//
// Subpackages implement them:
//
//   - auth/password   bcrypt (default) and argon2id hashing
//   - auth/jwt        generic signed-token service over golang-jwt
//   - auth/session    session claims plus the Issuer that mints and verifies them
//   - auth/revocation Redis-backed denylist of logged-out tokens
//   - auth/authctx    request-context propagation of the resolved Identity
//
// A session token is valid when its signature and expiry check out and it
// is absent from the revocation registry. Logout is the only transition
// out of the authenticated state before expiry.
//
//	auth:
//	  jwt:
//	    secret: "${AUTH_JWT_SECRET}"
//	    ttl: "168h"
//	  password:
//	    bcrypt_cost: 10
//	  cookie:
//	    name: "token"
//	    secure: true
package auth
