// Package ctxutil carries the acting user through a request or CLI
// invocation. It has no internal dependencies so any layer may import it.
package ctxutil

import (
	"context"
	"errors"
)

// ErrNoActor is returned by RequireActor when no actor is set.
var ErrNoActor = errors.New("no actor in context")

type actorKey struct{}

// WithActorID returns a context with the actor ID embedded.
func WithActorID(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, actorKey{}, actorID)
}

// ActorFromContext returns the actor ID from context, or empty string if not set.
func ActorFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(actorKey{}).(string); ok {
		return v
	}
	return ""
}

// RequireActor returns the actor ID from context or ErrNoActor.
func RequireActor(ctx context.Context) (string, error) {
	if actor := ActorFromContext(ctx); actor != "" {
		return actor, nil
	}
	return "", ErrNoActor
}
