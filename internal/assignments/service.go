package assignments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brightideas/dispatch-backend/pkg/db/models"
	pkgerrors "github.com/brightideas/dispatch-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type assignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error)
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, serviceDate, badgeID string) ([]models.Assignment, error)
}

type technicianLookup interface {
	FindByBadge(ctx context.Context, badgeID string) (*models.Technician, error)
}

// CreateInput captures a new job assignment. TechnicianName and ServiceDate
// are optional; missing values are filled from the registry and the regional
// clock respectively.
type CreateInput struct {
	BadgeID        string `json:"badge_id" validate:"required"`
	TechnicianName string `json:"technician_name"`
	CustomerName   string `json:"customer_name"`
	Address        string `json:"address"`
	ProjectID      string `json:"project_id"`
	TruckID        string `json:"truck_id"`
	ScheduledTime  string `json:"scheduled_time" validate:"required,datetime=15:04"`
	ServiceDate    string `json:"service_date" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateInput is a partial edit of assignment details. Verification state is
// not editable here; it only moves through the verify flow.
type UpdateInput struct {
	BadgeID        *string `json:"badge_id" validate:"omitempty,min=1"`
	TechnicianName *string `json:"technician_name" validate:"omitempty,min=1"`
	CustomerName   *string `json:"customer_name"`
	Address        *string `json:"address"`
	ProjectID      *string `json:"project_id"`
	TruckID        *string `json:"truck_id"`
	ScheduledTime  *string `json:"scheduled_time" validate:"omitempty,datetime=15:04"`
	ServiceDate    *string `json:"service_date" validate:"omitempty,datetime=2006-01-02"`
}

// CreateResult bundles the stored assignment with the customer notification
// text the dispatcher forwards by SMS.
type CreateResult struct {
	Assignment *AssignmentDTO `json:"assignment"`
	Message    string         `json:"message"`
}

// VerifyResult reports the post-transition row and whether this call was the
// one that flipped it.
type VerifyResult struct {
	Assignment      *AssignmentDTO
	AlreadyVerified bool
}

// Service exposes assignment scheduling and the one-way verification
// transition.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	Get(ctx context.Context, id uuid.UUID) (*AssignmentDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*AssignmentDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, serviceDate, badgeID string) ([]AssignmentDTO, error)
	Verify(ctx context.Context, id uuid.UUID) (*VerifyResult, error)
}

type service struct {
	repo        assignmentRepository
	techs       technicianLookup
	loc         *time.Location
	linkBaseURL string
	now         func() time.Time
}

// NewService builds an assignment service. All timestamps and date defaults
// use loc, the single regional timezone the business operates in.
func NewService(repo assignmentRepository, techs technicianLookup, loc *time.Location, linkBaseURL string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("assignment repository required")
	}
	if techs == nil {
		return nil, fmt.Errorf("technician lookup required")
	}
	if loc == nil {
		return nil, fmt.Errorf("timezone location required")
	}
	if linkBaseURL == "" {
		return nil, fmt.Errorf("verify link base url required")
	}
	return &service{
		repo:        repo,
		techs:       techs,
		loc:         loc,
		linkBaseURL: strings.TrimRight(linkBaseURL, "/"),
		now:         time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	badgeID := strings.TrimSpace(input.BadgeID)
	if badgeID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "badge_id is required")
	}
	scheduledTime, err := normalizeClock(input.ScheduledTime)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scheduled_time must be HH:MM")
	}

	now := s.now().In(s.loc)
	serviceDate := strings.TrimSpace(input.ServiceDate)
	if serviceDate == "" {
		serviceDate = now.Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, serviceDate); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service_date must be YYYY-MM-DD")
	}

	techName := strings.TrimSpace(input.TechnicianName)
	if techName == "" {
		tech, err := s.techs.FindByBadge(ctx, badgeID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown badge_id and no technician_name supplied")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load technician")
		}
		techName = tech.Name
	}

	assignment := &models.Assignment{
		BadgeID:        badgeID,
		TechnicianName: techName,
		CustomerName:   strings.TrimSpace(input.CustomerName),
		Address:        strings.TrimSpace(input.Address),
		ProjectID:      strings.TrimSpace(input.ProjectID),
		TruckID:        strings.TrimSpace(input.TruckID),
		ScheduledTime:  scheduledTime,
		ServiceDate:    serviceDate,
		Verified:       false,
		CreatedAt:      now,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist assignment")
	}

	return &CreateResult{
		Assignment: FromModel(assignment),
		Message:    s.customerMessage(assignment),
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*AssignmentDTO, error) {
	assignment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(assignment), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*AssignmentDTO, error) {
	assignment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.BadgeID != nil {
		badge := strings.TrimSpace(*input.BadgeID)
		if badge == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "badge_id cannot be empty")
		}
		assignment.BadgeID = badge
	}
	if input.TechnicianName != nil {
		assignment.TechnicianName = strings.TrimSpace(*input.TechnicianName)
	}
	if input.CustomerName != nil {
		assignment.CustomerName = strings.TrimSpace(*input.CustomerName)
	}
	if input.Address != nil {
		assignment.Address = strings.TrimSpace(*input.Address)
	}
	if input.ProjectID != nil {
		assignment.ProjectID = strings.TrimSpace(*input.ProjectID)
	}
	if input.TruckID != nil {
		assignment.TruckID = strings.TrimSpace(*input.TruckID)
	}
	if input.ScheduledTime != nil {
		scheduledTime, err := normalizeClock(*input.ScheduledTime)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "scheduled_time must be HH:MM")
		}
		assignment.ScheduledTime = scheduledTime
	}
	if input.ServiceDate != nil {
		if _, err := time.Parse(dateLayout, *input.ServiceDate); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "service_date must be YYYY-MM-DD")
		}
		assignment.ServiceDate = *input.ServiceDate
	}

	if err := s.repo.Update(ctx, assignment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update assignment")
	}
	return FromModel(assignment), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete assignment")
	}
	return nil
}

func (s *service) List(ctx context.Context, serviceDate, badgeID string) ([]AssignmentDTO, error) {
	serviceDate = strings.TrimSpace(serviceDate)
	if serviceDate == "" {
		serviceDate = s.now().In(s.loc).Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, serviceDate); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "service_date must be YYYY-MM-DD")
	}

	rows, err := s.repo.List(ctx, serviceDate, strings.TrimSpace(badgeID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list assignments")
	}
	dtos := make([]AssignmentDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}

// Verify flips the assignment to verified exactly once. Repeat calls succeed
// without touching the stored row, so the first verification timestamp is the
// one that sticks.
func (s *service) Verify(ctx context.Context, id uuid.UUID) (*VerifyResult, error) {
	assignment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if assignment.Verified {
		return &VerifyResult{Assignment: FromModel(assignment), AlreadyVerified: true}, nil
	}

	verifiedAt := s.now().In(s.loc)
	assignment.Verified = true
	assignment.VerifiedAt = &verifiedAt
	if err := s.repo.Update(ctx, assignment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record verification")
	}
	return &VerifyResult{Assignment: FromModel(assignment)}, nil
}

// normalizeClock re-renders the parsed value so "9:00" is stored as "09:00".
// Rows sort lexically on scheduled_time, which only works zero-padded.
func normalizeClock(value string) (string, error) {
	t, err := time.Parse(timeLayout, strings.TrimSpace(value))
	if err != nil {
		return "", err
	}
	return t.Format(timeLayout), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	assignment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "assignment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
	}
	return assignment, nil
}

// customerMessage renders the SMS text the dispatcher sends out with each new
// assignment, including the direct verification link.
func (s *service) customerMessage(a *models.Assignment) string {
	displayTime := a.ScheduledTime
	if t, err := time.Parse(timeLayout, a.ScheduledTime); err == nil {
		displayTime = t.Format("03:04 PM")
	}
	return fmt.Sprintf(`Bright Ideas Construction
📅 Service: %s at %s
👷 Technician: %s
🔧 Project #: %s
🏠 Address: %s
🚚 Truck: %s
✅ Verify: %s/?view=verify&badge_id=%s
`, a.ServiceDate, displayTime, a.TechnicianName, a.ProjectID, a.Address, a.TruckID, s.linkBaseURL, a.BadgeID)
}
