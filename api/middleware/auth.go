package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/stylekart/fulfillment-backend/api/responses"
	pkgAuth "github.com/stylekart/fulfillment-backend/pkg/auth"
	"github.com/stylekart/fulfillment-backend/pkg/config"
	pkgerrors "github.com/stylekart/fulfillment-backend/pkg/errors"
	"github.com/stylekart/fulfillment-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// actor identity. It is the single place tokens are interpreted; handlers
// read the actor via the context accessors only.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxActorID, claims.ActorID)
			ctx = context.WithValue(ctx, ctxRole, claims.Role)
			if claims.CourierID != nil {
				ctx = context.WithValue(ctx, ctxCourierID, *claims.CourierID)
			}

			if logg != nil {
				fields := map[string]any{
					"user_id":    claims.ActorID.String(),
					"actor_role": string(claims.Role),
				}
				if claims.CourierID != nil {
					fields["courier_id"] = claims.CourierID.String()
				}
				ctx = logg.WithFields(ctx, fields)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
