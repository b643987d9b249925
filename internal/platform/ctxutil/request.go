package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type actorKey struct{}

// Role mirrors the account types issued by the auth service.
type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleInstructor Role = "Instructor"
	RoleStudent    Role = "Student"
)

// Actor is the verified caller identity handed over by the auth boundary.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

func (a Actor) IsZero() bool { return a.UserID == uuid.Nil }

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// GetActor returns the actor stored on ctx and whether one was present.
func GetActor(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok && !a.IsZero()
}

type traceDataKey struct{}

// TraceData carries the correlation ids set by the trace middleware.
type TraceData struct {
	TraceID   string
	RequestID string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if ctx == nil {
		return nil
	}
	td, _ := ctx.Value(traceDataKey{}).(*TraceData)
	return td
}
