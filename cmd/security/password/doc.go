// Package password hashes and verifies account passwords.
//
// New digests are Argon2id in the PHC string format:
//
//	$argon2id$v=19$m=<KiB>,t=<iterations>,p=<lanes>$<salt>$<key>
//
// Verify reads the cost parameters from the digest itself, so raising the
// configured cost never invalidates stored digests. Legacy bcrypt digests
// ($2a$, $2b$, $2y$) still verify; NeedsRehash reports them so the login path
// can upgrade them in place.
//
// Digests are untrusted input. Verify refuses parameters far above the
// configured cost.
package password
