package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	importsvc "github.com/brightideas/dispatch-backend/internal/imports"
)

type stubImportService struct {
	preview *importsvc.Preview
	result  *importsvc.Result
	err     error
}

func (s *stubImportService) Validate(_ context.Context, _ io.Reader) (*importsvc.Preview, error) {
	return s.preview, s.err
}

func (s *stubImportService) Apply(_ context.Context, _ io.Reader) (*importsvc.Result, error) {
	return s.result, s.err
}

func csvUpload(t *testing.T, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "jobs.csv")
	if err != nil {
		t.Fatalf("create file part: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func TestImportApplySuccess(t *testing.T) {
	svc := &stubImportService{result: &importsvc.Result{TechsAdded: 1, AssignmentsAdded: 2}}
	handler := ImportApply(svc, testLogger())

	body, contentType := csvUpload(t, "Technician Name,Badge ID\n")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/apply", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data importsvc.Result `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AssignmentsAdded != 2 {
		t.Fatalf("unexpected result %+v", envelope.Data)
	}
}

func TestImportValidateMissingFile(t *testing.T) {
	handler := ImportValidate(&stubImportService{}, testLogger())

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports/validate", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
