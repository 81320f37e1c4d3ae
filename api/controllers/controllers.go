package controllers

import (
	"net/http"

	"github.com/cafenowa/cafenowa-backend/api/middleware"
	"github.com/cafenowa/cafenowa-backend/api/responses"
	pkgerrors "github.com/cafenowa/cafenowa-backend/pkg/errors"
	"github.com/cafenowa/cafenowa-backend/pkg/logger"
	"github.com/cafenowa/cafenowa-backend/pkg/types"
)

func requestMeta(r *http.Request) types.RequestMeta {
	return types.RequestMeta{
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// requireActor pulls the authenticated actor or writes a 401. Routes
// behind the Auth middleware always have one; this is the belt for
// handlers wired outside it by mistake.
func requireActor(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (types.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
	}
	return actor, ok
}
