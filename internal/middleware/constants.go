// File: internal/middleware/constants.go
package middleware

import (
	"context"

	"github.com/iyunix/go-courier/internal/domain"
)

// Context keys for middleware communication
type contextKey string

const (
	ActorKey     contextKey = "actor"
	RequestIDKey contextKey = "request_id"
)

const authCookieName = "auth_token"

// Logger is the subset of the service logger the middleware needs.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ActorFromContext returns the authenticated caller, if any.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(ActorKey).(domain.Actor)
	return actor, ok && actor.ID != ""
}

// WithActor stores actor in ctx. Handlers under test use it to skip the JWT layer.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, ActorKey, actor)
}
