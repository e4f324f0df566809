// Package requestid carries a correlation identifier through contexts and
// across the frontend → gateway hop.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header used to propagate the identifier.
const Header = "X-Request-ID"

type contextKey struct{}

// New returns a fresh random identifier.
func New() string {
	return uuid.NewString()
}

// With annotates ctx with id. Empty ids leave ctx unchanged.
func With(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, contextKey{}, id)
}

// From extracts the identifier if present.
func From(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(contextKey{}).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
