// Package authctx carries the authenticated principal on a context.Context.
//
// It is generic so the key stays private to this package while callers
// decide what they store; the storefront stores auth.Identity.
//
//	ctx = authctx.Set(ctx, identity)
//	id, ok := authctx.Get[auth.Identity](ctx)
package authctx

import (
	"context"
	"errors"
)

type contextKey struct{}

var claimsKey = contextKey{}

// ErrNoClaims is returned when no principal of the requested type is on the context.
var ErrNoClaims = errors.New("authctx: no claims in context")

// Set stores the principal in the context.
func Set(ctx context.Context, claims any) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Get retrieves the principal if present and of type T.
func Get[T any](ctx context.Context) (T, bool) {
	claims, ok := ctx.Value(claimsKey).(T)
	return claims, ok
}

// GetOrError is Get returning ErrNoClaims instead of a boolean.
func GetOrError[T any](ctx context.Context) (T, error) {
	claims, ok := Get[T](ctx)
	if !ok {
		var zero T
		return zero, ErrNoClaims
	}
	return claims, nil
}
