package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"fieldpro-service/internal/model"
	"fieldpro-service/pkg/apperr"

	"gorm.io/gorm"
)

// JobFilter narrows a job listing. Zero values mean "no filter".
type JobFilter struct {
	Status          string
	Search          string
	IncludeArchived bool
	Page            int
	PageSize        int
}

// JobSummary is a listing row with the assigned technician's name
// joined in. TechnicianName is nil when no technician is assigned.
type JobSummary struct {
	ID             uint       `json:"id"`
	Code           string     `json:"code"`
	CustomerName   string     `json:"customer_name"`
	Address        string     `json:"address"`
	ScheduledAt    time.Time  `json:"scheduled_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	Status         string     `json:"status"`
	Project        *string    `json:"project,omitempty"`
	TechnicianID   *uint      `json:"technician_id,omitempty"`
	TechnicianName *string    `json:"technician_name,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	IsDeleted      bool       `json:"is_deleted"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
}

// JobPatch carries a partial update. Nil fields are left unchanged,
// except TechnicianID which always overwrites the stored value, nil
// clearing the assignment.
type JobPatch struct {
	Code         *string
	CustomerName *string
	Address      *string
	ScheduledAt  *time.Time
	CompletedAt  *time.Time
	Status       *string
	Project      *string
	Notes        *string
	TechnicianID *uint
}

// JobRepository is the tenant-scoped data access for jobs. Every method
// takes the resolved tenant id explicitly; ids belonging to another
// tenant behave exactly like missing ids.
type JobRepository interface {
	List(ctx context.Context, tenantID string, filter JobFilter) ([]JobSummary, error)
	GetByID(ctx context.Context, tenantID string, id uint) (*JobSummary, error)
	Create(ctx context.Context, tenantID string, job *model.Job) error
	UpdateStatusAndNotes(ctx context.Context, tenantID string, id uint, status string, notes *string) error
	UpdateFields(ctx context.Context, tenantID string, id uint, patch JobPatch) error
	SoftDelete(ctx context.Context, tenantID string, id uint) error
	BulkSoftDelete(ctx context.Context, tenantID string, ids []uint) (int64, error)
	HardDelete(ctx context.Context, tenantID string, id uint) error
}

type jobRepo struct {
	db *gorm.DB
}

// NewJobRepo creates the GORM-backed JobRepository
func NewJobRepo(db *gorm.DB) JobRepository {
	return &jobRepo{db: db}
}

const summaryColumns = "jobs.id, jobs.code, jobs.customer_name, jobs.address, " +
	"jobs.scheduled_at, jobs.completed_at, jobs.status, jobs.project, " +
	"jobs.technician_id, technicians.name AS technician_name, jobs.notes, " +
	"jobs.is_deleted, jobs.deleted_at"

func (r *jobRepo) summaryQuery(ctx context.Context, tenantID string) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&model.Job{}).
		Select(summaryColumns).
		Joins("LEFT JOIN technicians ON technicians.id = jobs.technician_id").
		Where("jobs.tenant_id = ?", tenantID)
}

func (r *jobRepo) List(ctx context.Context, tenantID string, filter JobFilter) ([]JobSummary, error) {
	q := r.summaryQuery(ctx, tenantID)

	if !filter.IncludeArchived {
		q = q.Where("jobs.is_deleted = ?", false)
	}

	if filter.Status != "" {
		q = q.Where("jobs.status = ?", filter.Status)
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where(
			"LOWER(jobs.code) LIKE ? OR LOWER(jobs.customer_name) LIKE ? OR LOWER(jobs.project) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	summaries := make([]JobSummary, 0)
	err := q.Order("jobs.scheduled_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Scan(&summaries).Error
	return summaries, err
}

func (r *jobRepo) GetByID(ctx context.Context, tenantID string, id uint) (*JobSummary, error) {
	var summary JobSummary
	result := r.summaryQuery(ctx, tenantID).
		Where("jobs.id = ?", id).
		Limit(1).
		Scan(&summary)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, apperr.ErrNotFound
	}
	return &summary, nil
}

func (r *jobRepo) Create(ctx context.Context, tenantID string, job *model.Job) error {
	job.TenantID = tenantID
	job.ScheduledAt = job.ScheduledAt.UTC()
	job.IsDeleted = false
	job.DeletedAt = nil
	if job.Status == "" {
		job.Status = model.StatusScheduled
	}
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *jobRepo) find(ctx context.Context, tenantID string, id uint) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepo) UpdateStatusAndNotes(ctx context.Context, tenantID string, id uint, status string, notes *string) error {
	job, err := r.find(ctx, tenantID, id)
	if err != nil {
		return err
	}

	job.Status = status
	job.Notes = notes

	// First transition to Completed stamps the completion time; a
	// re-completion never overwrites it.
	if status == model.StatusCompleted && job.CompletedAt == nil {
		now := time.Now().UTC()
		job.CompletedAt = &now
	}

	return r.db.WithContext(ctx).Save(job).Error
}

func (r *jobRepo) UpdateFields(ctx context.Context, tenantID string, id uint, patch JobPatch) error {
	job, err := r.find(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if patch.Code != nil {
		job.Code = *patch.Code
	}
	if patch.CustomerName != nil {
		job.CustomerName = *patch.CustomerName
	}
	if patch.Address != nil {
		job.Address = *patch.Address
	}
	if patch.ScheduledAt != nil {
		job.ScheduledAt = patch.ScheduledAt.UTC()
	}
	if patch.CompletedAt != nil {
		job.CompletedAt = patch.CompletedAt
	}
	if patch.Status != nil {
		job.Status = *patch.Status
	}
	if patch.Project != nil {
		job.Project = patch.Project
	}
	if patch.Notes != nil {
		job.Notes = patch.Notes
	}

	// Unlike the fields above, the technician assignment always takes
	// the patch value: nil clears it.
	job.TechnicianID = patch.TechnicianID

	return r.db.WithContext(ctx).Save(job).Error
}

func (r *jobRepo) SoftDelete(ctx context.Context, tenantID string, id uint) error {
	result := r.db.WithContext(ctx).
		Model(&model.Job{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *jobRepo) BulkSoftDelete(ctx context.Context, tenantID string, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, apperr.ErrEmptyBulkSet
	}

	// One set-based update; ids missing or foreign to the tenant are
	// silently skipped.
	result := r.db.WithContext(ctx).
		Model(&model.Job{}).
		Where("id IN ? AND tenant_id = ?", ids, tenantID).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_at": time.Now().UTC(),
		})
	return result.RowsAffected, result.Error
}

func (r *jobRepo) HardDelete(ctx context.Context, tenantID string, id uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Delete(&model.Job{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
