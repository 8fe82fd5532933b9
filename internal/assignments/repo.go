package assignments

import (
	"context"
	"fmt"

	"github.com/brightideas/dispatch-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles assignment persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to assignment operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new assignment row with a store-assigned id.
func (r *Repository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment == nil {
		return fmt.Errorf("assignment is required")
	}
	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(assignment).Error
}

// FindByID loads an assignment by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Update saves the provided assignment.
func (r *Repository) Update(ctx context.Context, assignment *models.Assignment) error {
	if assignment == nil {
		return fmt.Errorf("assignment is required")
	}
	return r.db.WithContext(ctx).Save(assignment).Error
}

// Delete removes the assignment row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Assignment{}).Error
}

// List filters by exact service date, then optionally by badge id. The
// composite (service_date, badge_id) index backs both shapes.
func (r *Repository) List(ctx context.Context, serviceDate, badgeID string) ([]models.Assignment, error) {
	query := r.db.WithContext(ctx).Where("service_date = ?", serviceDate)
	if badgeID != "" {
		query = query.Where("badge_id = ?", badgeID)
	}
	var rows []models.Assignment
	if err := query.Order("scheduled_time asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
