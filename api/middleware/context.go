package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/stylekart/fulfillment-backend/pkg/enums"
)

type contextKey string

const (
	ctxActorID   contextKey = "actor_id"
	ctxRole      contextKey = "actor_role"
	ctxCourierID contextKey = "courier_id"
)

// ActorIDFromContext returns the authenticated actor's ID or uuid.Nil.
func ActorIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxActorID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

// RoleFromContext returns the authenticated actor's role, empty if absent.
func RoleFromContext(ctx context.Context) enums.ActorRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.ActorRole); ok {
		return v
	}
	return ""
}

// CourierIDFromContext returns the courier record tied to the token, or
// nil when the actor is not a courier.
func CourierIDFromContext(ctx context.Context) *uuid.UUID {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxCourierID).(uuid.UUID); ok {
		return &v
	}
	return nil
}
