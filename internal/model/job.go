package model

import (
	"time"
)

// Job statuses
const (
	StatusScheduled  = "Scheduled"
	StatusInProgress = "InProgress"
	StatusCompleted  = "Completed"
)

// ValidStatus reports whether s is one of the known job statuses
func ValidStatus(s string) bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Job represents one field-service work order
type Job struct {
	ID           uint        `json:"id" gorm:"primarykey"`
	Code         string      `json:"code" gorm:"type:varchar(50);not null"`
	CustomerName string      `json:"customer_name" gorm:"type:varchar(200);not null"`
	Address      string      `json:"address" gorm:"type:text;not null"`
	ScheduledAt  time.Time   `json:"scheduled_at" gorm:"not null;index"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
	Status       string      `json:"status" gorm:"type:varchar(20);not null;default:'Scheduled';index"`
	Project      *string     `json:"project,omitempty" gorm:"type:varchar(255)"`
	TechnicianID *uint       `json:"technician_id,omitempty"`
	Technician   *Technician `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	Notes        *string     `json:"notes,omitempty" gorm:"type:text"`
	IsDeleted    bool        `json:"is_deleted" gorm:"not null;default:false;index"`
	DeletedAt    *time.Time  `json:"deleted_at,omitempty"`
	TenantID     string      `json:"tenant_id" gorm:"type:varchar(100);not null;index;comment:'Tenant this job belongs to'"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
