// Package version exposes build information set through -ldflags, falling
// back to the VCS stamp the Go toolchain embeds.
//
//	go build -ldflags "-X github.com/kbukum/storefront/version.Version=v1.2.0"
package version
