// Package gate is the edge request classifier.
//
// It runs before routing on every request outside the skip list, decides
// Allow, RedirectLogin or RedirectHome from the path and whether the
// auth-token cookie verifies, and never touches the database. It is a coarse
// filter: handlers behind it still resolve the session themselves.
package gate
