package context

import (
	"context"
	"net/http"

	"github.com/cogestio/espaceclient/internal/database"
)

type contextKey string

const (
	authenticatedUserContextKey = contextKey("authenticatedUser")
)

func ContextSetAuthenticatedUser(r *http.Request, profile *database.Profile) *http.Request {
	ctx := context.WithValue(r.Context(), authenticatedUserContextKey, profile)
	return r.WithContext(ctx)
}

func ContextGetAuthenticatedUser(r *http.Request) *database.Profile {
	profile, ok := r.Context().Value(authenticatedUserContextKey).(*database.Profile)
	if !ok {
		return nil
	}

	return profile
}
