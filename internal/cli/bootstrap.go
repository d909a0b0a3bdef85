// Package cli provides CLI commands for the docroute application.
package cli

import (
	"context"
	"os"

	"github.com/example/docroute/internal/ctxutil"
)

// globalActorID stores the actor for the current CLI invocation.
// Set once at startup by DetectAndStoreActor().
var globalActorID string

// DetectAndStoreActor resolves the acting user and stores it globally: the
// --as flag wins, then DOCROUTE_ACTOR, then the login name in USER.
// Should be called once at CLI startup in PersistentPreRun.
func DetectAndStoreActor(flagValue string) {
	globalActorID = resolveActor(flagValue, os.Getenv)
}

func resolveActor(flagValue string, getenv func(string) string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := getenv("DOCROUTE_ACTOR"); v != "" {
		return v
	}
	return getenv("USER")
}

// GetActorID returns the stored actor ID from CLI startup.
// Returns empty string if DetectAndStoreActor() was not called.
func GetActorID() string {
	return globalActorID
}

// NewContext creates a context.Background() with the current actor ID embedded.
// CLI commands should use this instead of context.Background() directly.
func NewContext() context.Context {
	ctx := context.Background()
	if globalActorID != "" {
		return ctxutil.WithActorID(ctx, globalActorID)
	}
	return ctx
}
