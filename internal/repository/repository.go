package repository

import "gorm.io/gorm"

// Repository aggregates the data-access interfaces
type Repository struct {
	Job        JobRepository
	Technician TechnicianRepository
}

// NewRepository creates the Repository aggregate over a shared connection
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Job:        NewJobRepo(db),
		Technician: NewTechnicianRepo(db),
	}
}
