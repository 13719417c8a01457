// Package token issues and verifies Folio session tokens.
//
// A session token is a compact JWS (HS256) carrying the user id as "sub",
// issuance and expiry times, a unique "jti" and the configured issuer.
// Tokens are stateless: nothing is stored server-side at issuance.
//
// Design goals:
//   - The signing secret is an explicit, immutable Config value. There is no
//     built-in default; a missing or short secret fails construction.
//   - Every verification failure (malformed, bad signature, wrong algorithm,
//     expired, missing subject, foreign issuer) surfaces as ErrInvalidToken.
//     The concrete reason is available to server-side logging only, through
//     InvalidTokenError.
//
// Environment:
//   - FOLIO_AUTH_SECRET: HMAC signing secret (required, >= 32 bytes).
//   - FOLIO_AUTH_TOKEN_TTL: token validity window (default 168h).
//   - FOLIO_AUTH_ISSUER: "iss" claim (default "folio").
package token
