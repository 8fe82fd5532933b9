package technicians

import (
	"context"
	"fmt"

	"github.com/brightideas/dispatch-backend/pkg/db/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles technician persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to technician operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert writes the technician, overwriting an existing row with the same badge id.
func (r *Repository) Upsert(ctx context.Context, tech *models.Technician) error {
	if tech == nil {
		return fmt.Errorf("technician is required")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "badge_id"}},
			UpdateAll: true,
		}).
		Create(tech).Error
}

// FindByBadge loads a technician by badge id.
func (r *Repository) FindByBadge(ctx context.Context, badgeID string) (*models.Technician, error) {
	var tech models.Technician
	if err := r.db.WithContext(ctx).
		Where("badge_id = ?", badgeID).
		First(&tech).Error; err != nil {
		return nil, err
	}
	return &tech, nil
}

// Update saves the provided technician.
func (r *Repository) Update(ctx context.Context, tech *models.Technician) error {
	if tech == nil {
		return fmt.Errorf("technician is required")
	}
	return r.db.WithContext(ctx).Save(tech).Error
}

// Delete removes the technician row. Assignments referencing the badge are
// deliberately left alone.
func (r *Repository) Delete(ctx context.Context, badgeID string) error {
	return r.db.WithContext(ctx).
		Where("badge_id = ?", badgeID).
		Delete(&models.Technician{}).Error
}

// List returns every technician in store-native order.
func (r *Repository) List(ctx context.Context) ([]models.Technician, error) {
	var techs []models.Technician
	if err := r.db.WithContext(ctx).Find(&techs).Error; err != nil {
		return nil, err
	}
	return techs, nil
}
