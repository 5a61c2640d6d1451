// Package testutil opens isolated in-memory SQLite databases for tests and
// provides small assertions over table contents.
package testutil
