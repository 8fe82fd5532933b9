package imports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/brightideas/dispatch-backend/pkg/db/models"
	pkgerrors "github.com/brightideas/dispatch-backend/pkg/errors"
	"github.com/brightideas/dispatch-backend/pkg/logger"
	"github.com/brightideas/dispatch-backend/pkg/metrics"
	"gorm.io/gorm"
)

type technicianStore interface {
	Upsert(ctx context.Context, tech *models.Technician) error
	FindByBadge(ctx context.Context, badgeID string) (*models.Technician, error)
}

type assignmentStore interface {
	Create(ctx context.Context, assignment *models.Assignment) error
}

// Preview is the validation-only response: the parsed rows the apply pass
// would write.
type Preview struct {
	Rows     []Row `json:"rows"`
	RowCount int   `json:"row_count"`
}

// Result reports what the apply pass wrote.
type Result struct {
	TechsAdded       int `json:"techs_added"`
	TechsUpdated     int `json:"techs_updated"`
	AssignmentsAdded int `json:"assignments_added"`
}

// Service runs bulk CSV imports in two passes: a full validation pass with no
// writes, then a best-effort row-by-row apply.
type Service interface {
	Validate(ctx context.Context, r io.Reader) (*Preview, error)
	Apply(ctx context.Context, r io.Reader) (*Result, error)
}

type service struct {
	techs   technicianStore
	asgn    assignmentStore
	loc     *time.Location
	metrics *metrics.DispatchMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the import service. Metrics may be nil in tests.
func NewService(techs technicianStore, asgn assignmentStore, loc *time.Location, m *metrics.DispatchMetrics, logg *logger.Logger) (Service, error) {
	if techs == nil {
		return nil, fmt.Errorf("technician store required")
	}
	if asgn == nil {
		return nil, fmt.Errorf("assignment store required")
	}
	if loc == nil {
		return nil, fmt.Errorf("timezone location required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		techs:   techs,
		asgn:    asgn,
		loc:     loc,
		metrics: m,
		logg:    logg,
		now:     time.Now,
	}, nil
}

// Validate parses the file and reports the rows without writing anything.
func (s *service) Validate(ctx context.Context, r io.Reader) (*Preview, error) {
	rows, err := ParseCSV(r)
	if err != nil {
		s.countRun("rejected")
		return nil, err
	}
	return &Preview{Rows: rows, RowCount: len(rows)}, nil
}

// Apply validates the whole file first, then writes row by row. Validation is
// all-or-nothing; the write phase is not transactional, so a storage failure
// midway leaves the earlier rows committed and reports the failure.
func (s *service) Apply(ctx context.Context, r io.Reader) (*Result, error) {
	rows, err := ParseCSV(r)
	if err != nil {
		s.countRun("rejected")
		return nil, err
	}

	today := s.now().In(s.loc).Format("2006-01-02")
	result := &Result{}
	for _, row := range rows {
		if err := s.applyRow(ctx, row, today, result); err != nil {
			s.countRun("failed")
			s.countRows("written", result.AssignmentsAdded)
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
				fmt.Sprintf("import stopped at line %d", row.Line))
		}
	}

	s.countRun("applied")
	s.countRows("written", result.AssignmentsAdded)
	s.logg.Info(ctx, fmt.Sprintf("csv import applied: %d techs added, %d updated, %d assignments",
		result.TechsAdded, result.TechsUpdated, result.AssignmentsAdded))
	return result, nil
}

func (s *service) applyRow(ctx context.Context, row Row, today string, result *Result) error {
	if err := s.reconcileTechnician(ctx, row, result); err != nil {
		return err
	}

	serviceDate := row.ServiceDate
	if serviceDate == "" {
		serviceDate = today
	}
	assignment := &models.Assignment{
		BadgeID:        row.BadgeID,
		TechnicianName: row.TechnicianName,
		CustomerName:   row.CustomerName,
		Address:        row.Address,
		ProjectID:      row.ProjectID,
		TruckID:        row.TruckID,
		ScheduledTime:  row.ScheduledTime,
		ServiceDate:    serviceDate,
		CreatedAt:      s.now().In(s.loc),
	}
	if err := s.asgn.Create(ctx, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	result.AssignmentsAdded++
	return nil
}

// reconcileTechnician upserts the row's technician, writing only when the
// stored name or photo actually differs so the updated counter stays honest.
func (s *service) reconcileTechnician(ctx context.Context, row Row, result *Result) error {
	existing, err := s.techs.FindByBadge(ctx, row.BadgeID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("load technician %s: %w", row.BadgeID, err)
		}
		tech := &models.Technician{
			BadgeID: row.BadgeID,
			Name:    row.TechnicianName,
		}
		if row.PhotoURL != "" {
			tech.PhotoURL = &row.PhotoURL
		}
		if err := s.techs.Upsert(ctx, tech); err != nil {
			return fmt.Errorf("add technician %s: %w", row.BadgeID, err)
		}
		result.TechsAdded++
		return nil
	}

	changed := false
	if row.TechnicianName != "" && existing.Name != row.TechnicianName {
		existing.Name = row.TechnicianName
		changed = true
	}
	if row.PhotoURL != "" && (existing.PhotoURL == nil || *existing.PhotoURL != row.PhotoURL) {
		photo := row.PhotoURL
		existing.PhotoURL = &photo
		changed = true
	}
	if !changed {
		return nil
	}
	if err := s.techs.Upsert(ctx, existing); err != nil {
		return fmt.Errorf("update technician %s: %w", row.BadgeID, err)
	}
	result.TechsUpdated++
	return nil
}

func (s *service) countRun(outcome string) {
	if s.metrics != nil {
		s.metrics.IncImportRun(outcome)
	}
}

func (s *service) countRows(label string, n int) {
	if s.metrics != nil {
		s.metrics.AddImportRows(label, n)
	}
}
