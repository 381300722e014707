package api

import (
	"context"
	"errors"
	"net/http"
)

// Actor identity and role arrive as gateway-injected headers; authentication
// itself is handled upstream of this service.
const (
	headerActor = "X-Actor"
	headerRole  = "X-Actor-Role"

	// RoleAdmin may manage categories and attribute schemas in addition to
	// everything regular actors can do.
	RoleAdmin = "admin"
)

type contextKey int

const actorKey contextKey = iota

// Actor is the authenticated identity performing a request.
type Actor struct {
	Name string
	Role string
}

// ActorFromContext returns the actor attached by requireActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey).(Actor)
	return actor, ok
}

// requireActor rejects requests without an actor identity and attaches the
// identity to the request context.
func requireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.Header.Get(headerActor)
		if name == "" {
			respondError(w, http.StatusUnauthorized, errors.New("actor identity required"))
			return
		}
		actor := Actor{Name: name, Role: r.Header.Get(headerRole)}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

// requireAdmin gates schema-management writes to the admin role.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok || actor.Role != RoleAdmin {
			respondError(w, http.StatusForbidden, errors.New("admin role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// actorName returns a nullable actor reference for audit entries.
func actorName(ctx context.Context) *string {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Name == "" {
		return nil
	}
	name := actor.Name
	return &name
}
