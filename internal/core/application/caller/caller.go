// Package caller carries the identity of whoever invokes an entry point.
package caller

import "context"

type ctxKey struct{}

// WithCaller returns a copy of ctx carrying the given caller id.
func WithCaller(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the caller id, or an empty string for anonymous
// callers.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
