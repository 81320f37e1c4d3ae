package middleware

import (
	"net/http"

	"github.com/cafenowa/cafenowa-backend/api/responses"
	"github.com/cafenowa/cafenowa-backend/pkg/authz"
	pkgerrors "github.com/cafenowa/cafenowa-backend/pkg/errors"
	"github.com/cafenowa/cafenowa-backend/pkg/logger"
)

// RequireOperation gates a route behind the authorization policy. Must
// run after Auth so the actor is in context.
func RequireOperation(op authz.Operation, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			if !authz.Allowed(actor.Role, op) {
				if logg != nil {
					ctx := logg.WithFields(r.Context(), map[string]any{
						"operation":  string(op),
						"actor_role": actor.Role.String(),
					})
					logg.Warn(ctx, "authz.denied")
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient privileges"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
