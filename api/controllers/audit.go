package controllers

import (
	"net/http"
	"strings"

	"github.com/cafenowa/cafenowa-backend/api/responses"
	"github.com/cafenowa/cafenowa-backend/api/validators"
	"github.com/cafenowa/cafenowa-backend/internal/audit"
	"github.com/cafenowa/cafenowa-backend/pkg/enums"
	"github.com/cafenowa/cafenowa-backend/pkg/logger"
)

// AuditTrail serves the filtered audit log. Reading the trail is itself
// an audited action.
func AuditTrail(svc audit.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requireActor(w, r, logg)
		if !ok {
			return
		}

		page, err := validators.ParsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := audit.Filter{
			Role:       enums.Role(strings.TrimSpace(r.URL.Query().Get("user_type"))),
			ActionType: enums.ActionType(strings.TrimSpace(r.URL.Query().Get("action_type"))),
			Search:     strings.TrimSpace(r.URL.Query().Get("search")),
		}

		if from, err := validators.ParseQueryDate(r, "date_from"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if from != nil {
			start, _ := audit.DayBounds(*from)
			filter.DateFrom = &start
		}
		if to, err := validators.ParseQueryDate(r, "date_to"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if to != nil {
			_, end := audit.DayBounds(*to)
			filter.DateTo = &end
		}

		result, err := svc.Query(r.Context(), filter, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		meta := requestMeta(r)
		svc.Record(r.Context(), audit.Entry{
			Role:       actor.Role,
			ActorID:    &actor.ID,
			Username:   actor.Username,
			Action:     "Viewed audit trail",
			ActionType: enums.ActionView,
			IPAddress:  meta.IPAddress,
			UserAgent:  meta.UserAgent,
		})

		responses.WriteSuccess(w, result)
	}
}
