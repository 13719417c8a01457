// Package session resolves the auth-token cookie into an Outcome.
//
// An Outcome has exactly three kinds: Authenticated, AnonymousNoToken and
// AnonymousInvalidToken. Callers treat both anonymous kinds as "deny"; the
// distinction exists for logs and metrics only.
//
// Call sites:
//
//	gate middleware           token only (codec, never this package); both anonymous kinds = no valid token
//	GET  /api/auth/me         CrossCheck; only Authenticated returns 200, everything else 401 {user:null}
//	POST /api/auth/logout     TokenOnly; Authenticated revokes the jti, any kind clears the cookie
//	POST /api/upload/*        CrossCheck; only Authenticated proceeds
//	POST /api/portfolio/*     CrossCheck; only Authenticated proceeds
//
// CrossCheck looks the subject up in the user store under a bounded timeout
// and consults the revocation list. Any failure there resolves to
// AnonymousInvalidToken; it never fails open.
package session
