package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	asgnsvc "github.com/brightideas/dispatch-backend/internal/assignments"
	verifysvc "github.com/brightideas/dispatch-backend/internal/verify"
)

type stubVerifyService struct {
	summary *verifysvc.Summary
	result  *verifysvc.Result
	err     error
}

func (s *stubVerifyService) Summary(_ context.Context, _, _ string) (*verifysvc.Summary, error) {
	return s.summary, s.err
}

func (s *stubVerifyService) Verify(_ context.Context, _ uuid.UUID) (*verifysvc.Result, error) {
	return s.result, s.err
}

func TestVerifySummaryRequiresBadge(t *testing.T) {
	handler := VerifySummary(&stubVerifyService{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/verify/summary", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestVerifySummarySuccess(t *testing.T) {
	svc := &stubVerifyService{summary: &verifysvc.Summary{
		BadgeID:     "T001",
		ServiceDate: "2024-06-01",
		Assignments: []asgnsvc.AssignmentDTO{{BadgeID: "T001"}},
	}}
	handler := VerifySummary(svc, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/verify/summary?badge_id=T001", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data verifysvc.Summary `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.BadgeID != "T001" || len(envelope.Data.Assignments) != 1 {
		t.Fatalf("unexpected summary %+v", envelope.Data)
	}
}

func TestVerifyAssignmentSuccess(t *testing.T) {
	id := uuid.New()
	svc := &stubVerifyService{result: &verifysvc.Result{
		Assignment: &asgnsvc.AssignmentDTO{ID: id, Verified: true},
		Outcome:    verifysvc.OutcomeVerified,
	}}
	r := chi.NewRouter()
	r.Post("/api/v1/verify/assignments/{assignmentID}", VerifyAssignment(svc, testLogger()))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify/assignments/"+id.String(), nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data verifysvc.Result `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Outcome != verifysvc.OutcomeVerified {
		t.Fatalf("unexpected outcome %s", envelope.Data.Outcome)
	}
}

func TestVerifyAssignmentInvalidID(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/api/v1/verify/assignments/{assignmentID}", VerifyAssignment(&stubVerifyService{}, testLogger()))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify/assignments/nope", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
