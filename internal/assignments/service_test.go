package assignments

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/brightideas/dispatch-backend/pkg/db/models"
	pkgerrors "github.com/brightideas/dispatch-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type stubAssignmentRepo struct {
	items map[uuid.UUID]*models.Assignment
}

func newStubAssignmentRepo() *stubAssignmentRepo {
	return &stubAssignmentRepo{items: map[uuid.UUID]*models.Assignment{}}
}

func (s *stubAssignmentRepo) Create(_ context.Context, a *models.Assignment) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	stored := *a
	s.items[a.ID] = &stored
	return nil
}

func (s *stubAssignmentRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Assignment, error) {
	stored, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *stored
	return &copied, nil
}

func (s *stubAssignmentRepo) Update(_ context.Context, a *models.Assignment) error {
	stored := *a
	s.items[a.ID] = &stored
	return nil
}

func (s *stubAssignmentRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.items, id)
	return nil
}

func (s *stubAssignmentRepo) List(_ context.Context, serviceDate, badgeID string) ([]models.Assignment, error) {
	var out []models.Assignment
	for _, a := range s.items {
		if a.ServiceDate != serviceDate {
			continue
		}
		if badgeID != "" && a.BadgeID != badgeID {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

type stubTechLookup struct {
	techs map[string]*models.Technician
}

func (s *stubTechLookup) FindByBadge(_ context.Context, badgeID string) (*models.Technician, error) {
	tech, ok := s.techs[badgeID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return tech, nil
}

func newTestService(t *testing.T, repo *stubAssignmentRepo, techs *stubTechLookup, at time.Time) Service {
	t.Helper()
	if techs == nil {
		techs = &stubTechLookup{techs: map[string]*models.Technician{}}
	}
	svc, err := NewService(repo, techs, time.UTC, "http://localhost:8080")
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.(*service).now = func() time.Time { return at }
	return svc
}

func TestCreateDefaultsServiceDateAndSnapshotsName(t *testing.T) {
	repo := newStubAssignmentRepo()
	techs := &stubTechLookup{techs: map[string]*models.Technician{
		"T001": {BadgeID: "T001", Name: "Jane Doe"},
	}}
	svc := newTestService(t, repo, techs, time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC))

	result, err := svc.Create(context.Background(), CreateInput{
		BadgeID:       "T001",
		CustomerName:  "Acme Corp",
		Address:       "12 Elm St",
		ProjectID:     "P-100",
		TruckID:       "T-9",
		ScheduledTime: "09:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Assignment.ServiceDate != "2024-06-01" {
		t.Fatalf("expected service date 2024-06-01 got %s", result.Assignment.ServiceDate)
	}
	if result.Assignment.TechnicianName != "Jane Doe" {
		t.Fatalf("expected snapshot name Jane Doe got %s", result.Assignment.TechnicianName)
	}
	if result.Assignment.Verified {
		t.Fatal("new assignment must start unverified")
	}
}

func TestCreateMessageCarriesVerifyLink(t *testing.T) {
	repo := newStubAssignmentRepo()
	svc := newTestService(t, repo, nil, time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))

	result, err := svc.Create(context.Background(), CreateInput{
		BadgeID:        "T001",
		TechnicianName: "Jane Doe",
		CustomerName:   "Acme Corp",
		Address:        "12 Elm St",
		ProjectID:      "P-100",
		TruckID:        "T-9",
		ScheduledTime:  "14:30",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, want := range []string{
		"Bright Ideas Construction",
		"02:30 PM",
		"Technician: Jane Doe",
		"Project #: P-100",
		"Verify: http://localhost:8080/?view=verify&badge_id=T001",
	} {
		if !strings.Contains(result.Message, want) {
			t.Fatalf("message missing %q:\n%s", want, result.Message)
		}
	}
}

func TestCreateUnknownBadgeWithoutNameFails(t *testing.T) {
	repo := newStubAssignmentRepo()
	svc := newTestService(t, repo, nil, time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))

	_, err := svc.Create(context.Background(), CreateInput{
		BadgeID:       "ghost",
		CustomerName:  "Acme Corp",
		Address:       "12 Elm St",
		ProjectID:     "P-100",
		TruckID:       "T-9",
		ScheduledTime: "09:00",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code got %v", err)
	}
}

func TestCreateZeroPadsScheduledTime(t *testing.T) {
	repo := newStubAssignmentRepo()
	svc := newTestService(t, repo, nil, time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))

	// time.Parse accepts single-digit hours, but rows sort lexically on
	// scheduled_time, so "9:00" must land in storage as "09:00".
	result, err := svc.Create(context.Background(), CreateInput{
		BadgeID:        "T001",
		TechnicianName: "Jane Doe",
		CustomerName:   "Acme Corp",
		Address:        "12 Elm St",
		ProjectID:      "P-100",
		TruckID:        "T-9",
		ScheduledTime:  "9:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Assignment.ScheduledTime != "09:00" {
		t.Fatalf("expected 09:00 got %s", result.Assignment.ScheduledTime)
	}

	shorthand := "9:5"
	updated, err := svc.Update(context.Background(), result.Assignment.ID, UpdateInput{ScheduledTime: &shorthand})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ScheduledTime != "09:05" {
		t.Fatalf("expected 09:05 got %s", updated.ScheduledTime)
	}
}

func TestCreateAcceptsBlankDetailFields(t *testing.T) {
	repo := newStubAssignmentRepo()
	svc := newTestService(t, repo, nil, time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))

	// customer/address/project/truck are free text, empty included, matching
	// what the CSV import accepts.
	result, err := svc.Create(context.Background(), CreateInput{
		BadgeID:        "T001",
		TechnicianName: "Jane Doe",
		ScheduledTime:  "09:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Assignment.CustomerName != "" || result.Assignment.TruckID != "" {
		t.Fatalf("expected blank detail fields, got %+v", result.Assignment)
	}
}

func TestVerifyIsOneWayAndKeepsFirstTimestamp(t *testing.T) {
	repo := newStubAssignmentRepo()
	first := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, repo, nil, first)

	result, err := svc.Create(context.Background(), CreateInput{
		BadgeID:        "T001",
		TechnicianName: "Jane Doe",
		CustomerName:   "Acme Corp",
		Address:        "12 Elm St",
		ProjectID:      "P-100",
		TruckID:        "T-9",
		ScheduledTime:  "09:00",
		ServiceDate:    "2024-06-01",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := result.Assignment.ID

	verified, err := svc.Verify(context.Background(), id)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified.AlreadyVerified {
		t.Fatal("first verify must not report already verified")
	}
	if verified.Assignment.VerifiedAt == nil || !verified.Assignment.VerifiedAt.Equal(first) {
		t.Fatalf("expected verified_at %v got %v", first, verified.Assignment.VerifiedAt)
	}

	// re-verify later; the stored timestamp must not move
	svc.(*service).now = func() time.Time { return first.Add(2 * time.Hour) }
	again, err := svc.Verify(context.Background(), id)
	if err != nil {
		t.Fatalf("re-verify: %v", err)
	}
	if !again.AlreadyVerified {
		t.Fatal("second verify must report already verified")
	}
	if !again.Assignment.VerifiedAt.Equal(first) {
		t.Fatalf("verified_at moved from %v to %v", first, again.Assignment.VerifiedAt)
	}
}

func TestVerifyUnknownAssignment(t *testing.T) {
	repo := newStubAssignmentRepo()
	svc := newTestService(t, repo, nil, time.Now())

	_, err := svc.Verify(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected not found error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code got %v", err)
	}
}

func TestUpdateRejectsBadScheduledTime(t *testing.T) {
	repo := newStubAssignmentRepo()
	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	svc := newTestService(t, repo, nil, at)

	result, err := svc.Create(context.Background(), CreateInput{
		BadgeID:        "T001",
		TechnicianName: "Jane Doe",
		CustomerName:   "Acme Corp",
		Address:        "12 Elm St",
		ProjectID:      "P-100",
		TruckID:        "T-9",
		ScheduledTime:  "09:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	bad := "9am"
	_, err = svc.Update(context.Background(), result.Assignment.ID, UpdateInput{ScheduledTime: &bad})
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestListDefaultsToToday(t *testing.T) {
	repo := newStubAssignmentRepo()
	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	svc := newTestService(t, repo, nil, at)

	for _, day := range []string{"2024-06-01", "2024-06-02"} {
		_, err := svc.Create(context.Background(), CreateInput{
			BadgeID:        "T001",
			TechnicianName: "Jane Doe",
			CustomerName:   "Acme Corp",
			Address:        "12 Elm St",
			ProjectID:      "P-100",
			TruckID:        "T-9",
			ScheduledTime:  "09:00",
			ServiceDate:    day,
		})
		if err != nil {
			t.Fatalf("create %s: %v", day, err)
		}
	}

	list, err := svc.List(context.Background(), "", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].ServiceDate != "2024-06-01" {
		t.Fatalf("expected only today's assignment, got %+v", list)
	}
}
