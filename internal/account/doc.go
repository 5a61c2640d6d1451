// Package account implements the auth service: registration, login,
// logout, the current-identity lookup and per-account address book.
//
// Accounts live in a relational store reached through GORM. Sessions are
// stateless signed tokens carried in a cookie; logout records the token in
// a revocation registry so the session middleware refuses it until it
// would have expired anyway.
package account
