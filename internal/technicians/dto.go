package technicians

import (
	"time"

	"github.com/brightideas/dispatch-backend/pkg/db/models"
)

// TechnicianDTO is the API-facing shape of a technician profile.
type TechnicianDTO struct {
	BadgeID   string    `json:"badge_id"`
	Name      string    `json:"name"`
	PhotoURL  *string   `json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FromModel maps the persistence model onto the DTO.
func FromModel(m *models.Technician) *TechnicianDTO {
	if m == nil {
		return nil
	}
	return &TechnicianDTO{
		BadgeID:   m.BadgeID,
		Name:      m.Name,
		PhotoURL:  m.PhotoURL,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
