// Package testutil starts an in-memory Redis server for tests.
package testutil
