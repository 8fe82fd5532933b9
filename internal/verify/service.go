package verify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brightideas/dispatch-backend/internal/assignments"
	"github.com/brightideas/dispatch-backend/internal/technicians"
	pkgerrors "github.com/brightideas/dispatch-backend/pkg/errors"
	"github.com/brightideas/dispatch-backend/pkg/logger"
	"github.com/brightideas/dispatch-backend/pkg/metrics"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type assignmentService interface {
	List(ctx context.Context, serviceDate, badgeID string) ([]assignments.AssignmentDTO, error)
	Verify(ctx context.Context, id uuid.UUID) (*assignments.VerifyResult, error)
}

type technicianService interface {
	Get(ctx context.Context, badgeID string) (*technicians.TechnicianDTO, error)
}

// Summary is the customer-facing verification page payload: who is coming and
// which jobs are booked for the day.
type Summary struct {
	BadgeID     string                      `json:"badge_id"`
	ServiceDate string                      `json:"service_date"`
	Technician  *technicians.TechnicianDTO  `json:"technician,omitempty"`
	Assignments []assignments.AssignmentDTO `json:"assignments"`
}

// Outcome names the result of a verification attempt.
type Outcome string

const (
	OutcomeVerified        Outcome = "verified"
	OutcomeAlreadyVerified Outcome = "already_verified"
	OutcomeNotFound        Outcome = "not_found"
)

// Result reports the verified assignment and which outcome occurred.
type Result struct {
	Assignment *assignments.AssignmentDTO `json:"assignment"`
	Outcome    Outcome                    `json:"outcome"`
}

// Service is the customer verification surface. It never exposes registry or
// scheduling writes; the only mutation it can perform is the verified flip.
type Service interface {
	Summary(ctx context.Context, badgeID, serviceDate string) (*Summary, error)
	Verify(ctx context.Context, id uuid.UUID) (*Result, error)
}

type service struct {
	assignments assignmentService
	techs       technicianService
	loc         *time.Location
	metrics     *metrics.DispatchMetrics
	logg        *logger.Logger
	now         func() time.Time
}

// NewService wires the verify surface over the assignment and technician
// services. Metrics may be nil in tests.
func NewService(asgn assignmentService, techs technicianService, loc *time.Location, m *metrics.DispatchMetrics, logg *logger.Logger) (Service, error) {
	if asgn == nil {
		return nil, fmt.Errorf("assignment service required")
	}
	if techs == nil {
		return nil, fmt.Errorf("technician service required")
	}
	if loc == nil {
		return nil, fmt.Errorf("timezone location required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		assignments: asgn,
		techs:       techs,
		loc:         loc,
		metrics:     m,
		logg:        logg,
		now:         time.Now,
	}, nil
}

// Summary lists the badge's jobs for the requested date, defaulting to today
// in the regional timezone. A failed technician lookup degrades to a summary
// without the profile rather than blocking the customer.
func (s *service) Summary(ctx context.Context, badgeID, serviceDate string) (*Summary, error) {
	badgeID = strings.TrimSpace(badgeID)
	if badgeID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "badge_id is required")
	}
	serviceDate = strings.TrimSpace(serviceDate)
	if serviceDate == "" {
		serviceDate = s.now().In(s.loc).Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, serviceDate); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service_date must be YYYY-MM-DD")
	}

	jobs, err := s.assignments.List(ctx, serviceDate, badgeID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		BadgeID:     badgeID,
		ServiceDate: serviceDate,
		Assignments: jobs,
	}
	tech, err := s.techs.Get(ctx, badgeID)
	if err != nil {
		lctx := s.logg.WithBadgeID(ctx, badgeID)
		s.logg.Warn(lctx, "verify summary without technician profile: "+err.Error())
	} else {
		summary.Technician = tech
	}
	return summary, nil
}

// Verify records the customer confirmation for one assignment.
func (s *service) Verify(ctx context.Context, id uuid.UUID) (*Result, error) {
	res, err := s.assignments.Verify(ctx, id)
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeNotFound {
			s.count(OutcomeNotFound)
		}
		return nil, err
	}

	outcome := OutcomeVerified
	if res.AlreadyVerified {
		outcome = OutcomeAlreadyVerified
	}
	s.count(outcome)
	return &Result{Assignment: res.Assignment, Outcome: outcome}, nil
}

func (s *service) count(outcome Outcome) {
	if s.metrics != nil {
		s.metrics.IncVerification(string(outcome))
	}
}
