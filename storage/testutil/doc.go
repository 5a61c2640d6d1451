// Package testutil provides an in-memory storage.Storage for tests.
package testutil
