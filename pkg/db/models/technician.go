package models

import "time"

// Technician is keyed by the admin-assigned badge id, not a generated id.
type Technician struct {
	BadgeID   string    `gorm:"column:badge_id;primaryKey" json:"badge_id"`
	Name      string    `gorm:"column:name;not null" json:"name"`
	PhotoURL  *string   `gorm:"column:photo_url" json:"photo_url,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Technician) TableName() string {
	return "technicians"
}
