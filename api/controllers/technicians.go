package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/brightideas/dispatch-backend/api/responses"
	techsvc "github.com/brightideas/dispatch-backend/internal/technicians"
	"github.com/brightideas/dispatch-backend/pkg/config"
	pkgerrors "github.com/brightideas/dispatch-backend/pkg/errors"
	"github.com/brightideas/dispatch-backend/pkg/logger"
)

// CreateTechnician registers a technician from a multipart form carrying
// name, badge_id and the photo file.
func CreateTechnician(svc techsvc.Service, photos config.PhotosConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "technician service unavailable"))
			return
		}

		if err := r.ParseMultipartForm(int64(photos.MaxUploadMB) << 20); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		input := techsvc.CreateInput{
			Name:    r.FormValue("name"),
			BadgeID: r.FormValue("badge_id"),
		}

		file, header, err := r.FormFile("photo")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "photo file is required"))
			return
		}
		defer file.Close()
		input.Photo = &techsvc.PhotoInput{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		}

		ctx := logg.WithBadgeID(r.Context(), input.BadgeID)
		tech, err := svc.Create(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, tech)
	}
}

// UpdateTechnician edits name and/or photo; absent parts keep stored values.
func UpdateTechnician(svc techsvc.Service, photos config.PhotosConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "technician service unavailable"))
			return
		}

		badgeID := chi.URLParam(r, "badgeID")
		ctx := logg.WithBadgeID(r.Context(), badgeID)

		if err := r.ParseMultipartForm(int64(photos.MaxUploadMB) << 20); err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		var input techsvc.UpdateInput
		if name := strings.TrimSpace(r.FormValue("name")); name != "" {
			input.Name = &name
		}
		file, header, err := r.FormFile("photo")
		switch {
		case err == nil:
			defer file.Close()
			input.Photo = &techsvc.PhotoInput{
				FileName:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Body:        file,
			}
		case errors.Is(err, http.ErrMissingFile):
			// photo unchanged
		default:
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid photo upload"))
			return
		}

		tech, err := svc.Update(ctx, badgeID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, tech)
	}
}

// DeleteTechnician removes the registry entry. Assignments referencing the
// badge stay untouched.
func DeleteTechnician(svc techsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "technician service unavailable"))
			return
		}

		badgeID := chi.URLParam(r, "badgeID")
		ctx := logg.WithBadgeID(r.Context(), badgeID)
		if err := svc.Delete(ctx, badgeID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"badge_id": badgeID, "status": "deleted"})
	}
}

func GetTechnician(svc techsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "technician service unavailable"))
			return
		}

		badgeID := chi.URLParam(r, "badgeID")
		ctx := logg.WithBadgeID(r.Context(), badgeID)
		tech, err := svc.Get(ctx, badgeID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, tech)
	}
}

func ListTechnicians(svc techsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "technician service unavailable"))
			return
		}

		techs, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, techs)
	}
}
