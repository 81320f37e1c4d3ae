package controllers

import (
	"net/http"

	"github.com/cafenowa/cafenowa-backend/api/responses"
	"github.com/cafenowa/cafenowa-backend/api/validators"
	"github.com/cafenowa/cafenowa-backend/internal/auth"
	"github.com/cafenowa/cafenowa-backend/pkg/auth/session"
	"github.com/cafenowa/cafenowa-backend/pkg/config"
	pkgerrors "github.com/cafenowa/cafenowa-backend/pkg/errors"
	"github.com/cafenowa/cafenowa-backend/pkg/logger"
	"github.com/cafenowa/cafenowa-backend/pkg/types"
)

// AuthLogin wires the login endpoint into the HTTP layer. The issued
// token travels both in the body and as an HttpOnly cookie.
func AuthLogin(svc auth.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body, requestMeta(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		http.SetCookie(w, sessionCookie(cfg, result.Token, int(cfg.Session.TTL.Seconds())))
		responses.WriteSuccess(w, result)
	}
}

// AuthLogout tears down the caller's session. Logout is deliberately
// outside the Auth middleware so a sessionless call gets the café's
// "not logged in" response instead of a generic 401.
func AuthLogout(svc auth.Service, sessions session.Validator, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil || sessions == nil {
			err := pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		token := validators.SessionToken(r, cfg.Session.CookieName)
		if token == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInvalidOperation, "not logged in"))
			return
		}

		sess, err := sessions.Validate(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
			return
		}
		if sess == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInvalidOperation, "not logged in"))
			return
		}

		actor := types.Actor{ID: sess.IdentityID, Role: sess.Role, Username: sess.Username}
		if err := svc.Logout(r.Context(), token, actor, requestMeta(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		http.SetCookie(w, sessionCookie(cfg, "", -1))
		responses.WriteMessage(w, "logged out")
	}
}

func sessionCookie(cfg *config.Config, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.Session.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.App.IsProd(),
		SameSite: http.SameSiteLaxMode,
	}
}
