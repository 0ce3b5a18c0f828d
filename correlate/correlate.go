// Package correlate provides the ambient correlation id carried through one
// execution context, per spec Design Notes §9 ("ambient per-thread Chain and
// correlator" -> "goroutine-local-via-context" strategy).
//
// The id rides in a context.Context value rather than a package-level
// global, which gives the "strict isolation between concurrent executions"
// guarantee for free: two goroutines holding independently-derived contexts
// can never observe each other's id, and restoring the previous id after a
// scoped override is just a matter of going back to using the outer
// context — Go's context immutability does the restoring.
package correlate

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// Generate returns a fresh correlation id (UUIDv4 string).
func Generate() string {
	return uuid.NewString()
}

// With returns a derived context carrying id as the current correlation id.
// id must be a non-empty string; callers that hold a symbol-like type should
// convert it to its string form first (Go has no separate symbol type).
func With(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// From reads the current correlation id, if one has been set on ctx.
func From(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(contextKey{}).(string)
	return id, ok
}

// IDOrGenerate returns the ambient id on ctx, generating and returning a
// fresh one if none is set. It does not store the generated id back onto
// ctx — callers that need the id to persist for nested calls must use With.
func IDOrGenerate(ctx context.Context) string {
	if id, ok := From(ctx); ok {
		return id
	}
	return Generate()
}

// Use runs fn with a context carrying id as the correlation id, then
// returns. The previous id (or absence of one) is automatically back in
// effect for the caller once Use returns, on both normal and panicking
// exits, because ctx itself — the caller's reference — was never mutated.
func Use(ctx context.Context, id string, fn func(context.Context)) {
	fn(With(ctx, id))
}
