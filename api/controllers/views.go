package controllers

import (
	"net/http"

	"github.com/brightideas/dispatch-backend/api/responses"
	pkgerrors "github.com/brightideas/dispatch-backend/pkg/errors"
	"github.com/brightideas/dispatch-backend/pkg/logger"
)

// ViewSwitch is the root entry point shared by the admin panel and the
// customer verification link. An absent view falls back to admin; anything
// other than the two known views is a visible error, not a silent default.
func ViewSwitch(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view := r.URL.Query().Get("view")
		switch view {
		case "", "admin":
			responses.WriteSuccess(w, map[string]string{
				"view":        "admin",
				"technicians": "/api/v1/technicians",
				"assignments": "/api/v1/assignments",
				"imports":     "/api/v1/imports/validate",
			})
		case "verify":
			payload := map[string]string{
				"view":    "verify",
				"summary": "/api/v1/verify/summary",
			}
			if badge := r.URL.Query().Get("badge_id"); badge != "" {
				payload["summary"] = "/api/v1/verify/summary?badge_id=" + badge
				payload["badge_id"] = badge
			}
			responses.WriteSuccess(w, payload)
		default:
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "unknown view: use ?view=admin or ?view=verify"))
		}
	}
}
