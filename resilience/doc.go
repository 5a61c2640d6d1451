// Package resilience retries transient failures with capped exponential
// backoff. It is used on storage writes, where a brief object-store hiccup
// should not fail a whole product upload.
package resilience
