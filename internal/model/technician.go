package model

import (
	"time"
)

// Technician represents a field worker assignable to jobs
type Technician struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Email     *string   `json:"email,omitempty" gorm:"type:varchar(255)"`
	TenantID  string    `json:"tenant_id" gorm:"type:varchar(100);not null;index;comment:'Tenant this technician belongs to'"`
	CreatedAt time.Time `json:"created_at"`
}
