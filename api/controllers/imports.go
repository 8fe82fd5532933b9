package controllers

import (
	"mime/multipart"
	"net/http"

	"github.com/brightideas/dispatch-backend/api/responses"
	importsvc "github.com/brightideas/dispatch-backend/internal/imports"
	pkgerrors "github.com/brightideas/dispatch-backend/pkg/errors"
	"github.com/brightideas/dispatch-backend/pkg/logger"
)

const importMaxUploadBytes = 16 << 20

// ImportValidate parses the uploaded CSV and returns the rows it would write,
// without writing anything.
func ImportValidate(svc importsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "import service unavailable"))
			return
		}

		file, err := importFile(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer file.Close()

		preview, err := svc.Validate(r.Context(), file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, preview)
	}
}

// ImportApply validates the uploaded CSV and, if every row passes, writes the
// technicians and assignments it describes.
func ImportApply(svc importsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "import service unavailable"))
			return
		}

		file, err := importFile(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer file.Close()

		result, err := svc.Apply(r.Context(), file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func importFile(r *http.Request) (multipart.File, error) {
	if err := r.ParseMultipartForm(importMaxUploadBytes); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "csv file is required")
	}
	return file, nil
}
