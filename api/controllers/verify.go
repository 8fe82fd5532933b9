package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brightideas/dispatch-backend/api/responses"
	"github.com/brightideas/dispatch-backend/api/validators"
	verifysvc "github.com/brightideas/dispatch-backend/internal/verify"
	pkgerrors "github.com/brightideas/dispatch-backend/pkg/errors"
	"github.com/brightideas/dispatch-backend/pkg/logger"
)

// VerifySummary serves the customer verification page data: the technician
// profile and the badge's jobs for the selected date.
func VerifySummary(svc verifysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verify service unavailable"))
			return
		}

		badgeID, err := validators.RequireQuery(r, "badge_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		serviceDate, err := validators.ParseQueryDate(r, "service_date", "")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := logg.WithBadgeID(r.Context(), badgeID)
		summary, err := svc.Summary(ctx, badgeID, serviceDate)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// VerifyAssignment records the customer confirmation. Safe to call twice;
// the stored verification timestamp never moves after the first call.
func VerifyAssignment(svc verifysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "verify service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "assignmentID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid assignment id"))
			return
		}

		ctx := logg.WithAssignmentID(r.Context(), id.String())
		result, err := svc.Verify(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
