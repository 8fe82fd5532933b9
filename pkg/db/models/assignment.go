package models

import (
	"time"

	"github.com/google/uuid"
)

// Assignment is one scheduled job for a technician on a service date.
//
// BadgeID is an unenforced reference: deleting a technician leaves its
// assignments in place, and TechnicianName stays the snapshot taken when the
// job was assigned. VerifiedAt is set exactly when Verified flips true and is
// never cleared.
type Assignment struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	BadgeID        string     `gorm:"column:badge_id;not null;index:idx_assignments_date_badge,priority:2" json:"badge_id"`
	TechnicianName string     `gorm:"column:technician_name;not null" json:"technician_name"`
	CustomerName   string     `gorm:"column:customer_name" json:"customer_name"`
	Address        string     `gorm:"column:address" json:"address"`
	ProjectID      string     `gorm:"column:project_id" json:"project_id"`
	TruckID        string     `gorm:"column:truck_id" json:"truck_id"`
	ScheduledTime  string     `gorm:"column:scheduled_time;not null" json:"scheduled_time"`
	ServiceDate    string     `gorm:"column:service_date;not null;index:idx_assignments_date_badge,priority:1" json:"service_date"`
	Verified       bool       `gorm:"column:verified;not null;default:false" json:"verified"`
	VerifiedAt     *time.Time `gorm:"column:verified_at" json:"verified_at,omitempty"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Assignment) TableName() string {
	return "assignments"
}
