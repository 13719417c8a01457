// Package identity owns user records and their password credentials.
//
// The session layer only reads from it (GetUserByID); the auth handlers
// create users and look up credentials by email. Two Store implementations
// exist: PostgresStore for deployments and MemoryStore for local runs and
// tests.
package identity
