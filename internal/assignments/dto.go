package assignments

import (
	"time"

	"github.com/brightideas/dispatch-backend/pkg/db/models"
	"github.com/google/uuid"
)

// AssignmentDTO is the API-facing shape of a scheduled job.
type AssignmentDTO struct {
	ID             uuid.UUID  `json:"id"`
	BadgeID        string     `json:"badge_id"`
	TechnicianName string     `json:"technician_name"`
	CustomerName   string     `json:"customer_name"`
	Address        string     `json:"address"`
	ProjectID      string     `json:"project_id"`
	TruckID        string     `json:"truck_id"`
	ScheduledTime  string     `json:"scheduled_time"`
	ServiceDate    string     `json:"service_date"`
	Verified       bool       `json:"verified"`
	VerifiedAt     *time.Time `json:"verified_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// FromModel maps the persistence model onto the DTO.
func FromModel(m *models.Assignment) *AssignmentDTO {
	if m == nil {
		return nil
	}
	return &AssignmentDTO{
		ID:             m.ID,
		BadgeID:        m.BadgeID,
		TechnicianName: m.TechnicianName,
		CustomerName:   m.CustomerName,
		Address:        m.Address,
		ProjectID:      m.ProjectID,
		TruckID:        m.TruckID,
		ScheduledTime:  m.ScheduledTime,
		ServiceDate:    m.ServiceDate,
		Verified:       m.Verified,
		VerifiedAt:     m.VerifiedAt,
		CreatedAt:      m.CreatedAt,
	}
}
