package repository

import (
	"context"

	"fieldpro-service/internal/model"

	"gorm.io/gorm"
)

// TechnicianRepository is the tenant-scoped data access for technicians
type TechnicianRepository interface {
	List(ctx context.Context, tenantID string) ([]model.Technician, error)
	Create(ctx context.Context, tenantID string, technician *model.Technician) error
}

type technicianRepo struct {
	db *gorm.DB
}

// NewTechnicianRepo creates the GORM-backed TechnicianRepository
func NewTechnicianRepo(db *gorm.DB) TechnicianRepository {
	return &technicianRepo{db: db}
}

func (r *technicianRepo) List(ctx context.Context, tenantID string) ([]model.Technician, error) {
	technicians := make([]model.Technician, 0)
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&technicians).Error
	return technicians, err
}

func (r *technicianRepo) Create(ctx context.Context, tenantID string, technician *model.Technician) error {
	technician.TenantID = tenantID
	return r.db.WithContext(ctx).Create(technician).Error
}
