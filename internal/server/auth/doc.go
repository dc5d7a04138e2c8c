// Package auth holds the credential primitives of the server: Argon2id
// password hashing with per-identity salts, and signed, expiring session
// tokens. Both are stateless apart from their configuration.
package auth
