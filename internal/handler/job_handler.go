package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fieldpro-service/internal/middleware"
	"fieldpro-service/internal/model"
	"fieldpro-service/internal/repository"
	"fieldpro-service/pkg/apperr"
	"fieldpro-service/pkg/config"
	"fieldpro-service/pkg/logger"
	"fieldpro-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// JobCreateRequest defines the structure for job creation requests
type JobCreateRequest struct {
	Code         string  `json:"code"`
	CustomerName string  `json:"customer_name"`
	Address      string  `json:"address"`
	ScheduledAt  string  `json:"scheduled_at"`
	Status       string  `json:"status"`
	Project      *string `json:"project"`
	TechnicianID *uint   `json:"technician_id"`
}

// JobStatusRequest defines the structure for status/notes updates
type JobStatusRequest struct {
	Status string  `json:"status"`
	Notes  *string `json:"notes"`
}

// JobPatchRequest defines the structure for partial job updates.
// Omitted fields are left unchanged; technician_id always overwrites.
type JobPatchRequest struct {
	Code         *string `json:"code"`
	CustomerName *string `json:"customer_name"`
	Address      *string `json:"address"`
	ScheduledAt  *string `json:"scheduled_at"`
	CompletedAt  *string `json:"completed_at"`
	Status       *string `json:"status"`
	Project      *string `json:"project"`
	Notes        *string `json:"notes"`
	TechnicianID *uint   `json:"technician_id"`
}

// BulkDeleteRequest defines the structure for bulk soft-delete requests
type BulkDeleteRequest struct {
	JobIDs []uint `json:"jobIds"`
}

// JobHandler serves the job endpoints
type JobHandler struct {
	repo       repository.JobRepository
	pagination config.PaginationConfig
}

// NewJobHandler creates a JobHandler
func NewJobHandler(repo repository.JobRepository, pagination config.PaginationConfig) *JobHandler {
	return &JobHandler{repo: repo, pagination: pagination}
}

// Timestamps without a zone suffix are interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

func (h *JobHandler) normalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = h.pagination.DefaultPageSize
	}
	if pageSize > h.pagination.MaxPageSize {
		pageSize = h.pagination.MaxPageSize
	}
	return page, pageSize
}

func tenantID(c echo.Context) (string, bool) {
	id, ok := middleware.GetTenantIDFromContext(c)
	if !ok {
		logger.FromContext(c).Warn("Missing tenant_id in context")
		prometheus.TenantContextMissingCounter.Inc()
	}
	return id, ok
}

// ListJobs handles retrieving jobs with filtering and pagination
func (h *JobHandler) ListJobs(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordJobOperation("list")

	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant identifier is required"})
	}

	filter := repository.JobFilter{
		Status: c.QueryParam("status"),
		Search: c.QueryParam("search"),
	}

	if raw := c.QueryParam("includeArchived"); raw != "" {
		if archived, err := strconv.ParseBool(raw); err == nil {
			filter.IncludeArchived = archived
		} else {
			log.Warn("Invalid includeArchived parameter", zap.String("value", raw))
		}
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("pageSize"))
	filter.Page, filter.PageSize = h.normalizePaging(page, pageSize)

	defer prometheus.TrackDBOperation("select")(time.Now())

	jobs, err := h.repo.List(c.Request().Context(), tenant, filter)
	if err != nil {
		log.Error("Failed to list jobs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve jobs",
		})
	}

	log.Info("Jobs retrieved",
		zap.String("tenant_id", tenant),
		zap.Int("count", len(jobs)),
		zap.Int("page", filter.Page),
		zap.Int("page_size", filter.PageSize))
	return c.JSON(http.StatusOK, jobs)
}

// GetJob handles retrieving a single job by ID
func (h *JobHandler) GetJob(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordJobOperation("get")

	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant identifier is required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid job id"})
	}

	defer prometheus.TrackDBOperation("select")(time.Now())

	job, err := h.repo.GetByID(c.Request().Context(), tenant, uint(id))
	if errors.Is(err, apperr.ErrNotFound) {
		log.Warn("Job not found", zap.Uint64("job_id", id), zap.String("tenant_id", tenant))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Job not found"})
	}
	if err != nil {
		log.Error("Failed to get job", zap.Uint64("job_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve job",
		})
	}

	return c.JSON(http.StatusOK, job)
}

func validateCreateRequest(req *JobCreateRequest) string {
	switch {
	case req.Code == "":
		return "code is required"
	case len(req.Code) > 50:
		return "code must be at most 50 characters"
	case req.CustomerName == "":
		return "customer_name is required"
	case len(req.CustomerName) > 200:
		return "customer_name must be at most 200 characters"
	case req.Address == "":
		return "address is required"
	case req.ScheduledAt == "":
		return "scheduled_at is required"
	case req.Status != "" && !model.ValidStatus(req.Status):
		return "status must be one of Scheduled, InProgress, Completed"
	}
	return ""
}

// CreateJob handles creating a new job
func (h *JobHandler) CreateJob(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordJobOperation("create")

	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant identifier is required"})
	}

	var req JobCreateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if msg := validateCreateRequest(&req); msg != "" {
		log.Warn("Job creation rejected", zap.String("reason", msg))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	scheduledAt, err := parseTimestamp(req.ScheduledAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "scheduled_at must be a valid timestamp",
		})
	}

	job := model.Job{
		Code:         req.Code,
		CustomerName: req.CustomerName,
		Address:      req.Address,
		ScheduledAt:  scheduledAt,
		Status:       req.Status,
		Project:      req.Project,
		TechnicianID: req.TechnicianID,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := h.repo.Create(c.Request().Context(), tenant, &job); err != nil {
		log.Error("Failed to create job",
			zap.String("code", req.Code),
			zap.String("tenant_id", tenant),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create job",
		})
	}

	log.Info("Job created",
		zap.Uint("job_id", job.ID),
		zap.String("code", job.Code),
		zap.String("tenant_id", tenant))
	return c.JSON(http.StatusCreated, job)
}

// UpdateJobStatus handles overwriting a job's status and notes
func (h *JobHandler) UpdateJobStatus(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordJobOperation("update_status")

	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant identifier is required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid job id"})
	}

	var req JobStatusRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if !model.ValidStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "status must be one of Scheduled, InProgress, Completed",
		})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	err = h.repo.UpdateStatusAndNotes(c.Request().Context(), tenant, uint(id), req.Status, req.Notes)
	if errors.Is(err, apperr.ErrNotFound) {
		log.Warn("Job not found for update", zap.Uint64("job_id", id), zap.String("tenant_id", tenant))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Job not found"})
	}
	if err != nil {
		log.Error("Failed to update job status", zap.Uint64("job_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update job",
		})
	}

	log.Info("Job status updated",
		zap.Uint64("job_id", id),
		zap.String("status", req.Status),
		zap.String("tenant_id", tenant))
	return c.NoContent(http.StatusNoContent)
}

// PatchJob handles partial updates of a job's fields
func (h *JobHandler) PatchJob(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordJobOperation("update_fields")

	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant identifier is required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid job id"})
	}

	var req JobPatchRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Code != nil && (*req.Code == "" || len(*req.Code) > 50) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "code must be non-empty and at most 50 characters",
		})
	}
	if req.CustomerName != nil && (*req.CustomerName == "" || len(*req.CustomerName) > 200) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "customer_name must be non-empty and at most 200 characters",
		})
	}
	if req.Status != nil && !model.ValidStatus(*req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "status must be one of Scheduled, InProgress, Completed",
		})
	}

	patch := repository.JobPatch{
		Code:         req.Code,
		CustomerName: req.CustomerName,
		Address:      req.Address,
		Status:       req.Status,
		Project:      req.Project,
		Notes:        req.Notes,
		TechnicianID: req.TechnicianID,
	}

	if req.ScheduledAt != nil {
		t, err := parseTimestamp(*req.ScheduledAt)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "scheduled_at must be a valid timestamp",
			})
		}
		patch.ScheduledAt = &t
	}
	if req.CompletedAt != nil {
		t, err := parseTimestamp(*req.CompletedAt)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "completed_at must be a valid timestamp",
			})
		}
		patch.CompletedAt = &t
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	err = h.repo.UpdateFields(c.Request().Context(), tenant, uint(id), patch)
	if errors.Is(err, apperr.ErrNotFound) {
		log.Warn("Job not found for patch", zap.Uint64("job_id", id), zap.String("tenant_id", tenant))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Job not found"})
	}
	if err != nil {
		log.Error("Failed to patch job", zap.Uint64("job_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update job",
		})
	}

	log.Info("Job fields updated", zap.Uint64("job_id", id), zap.String("tenant_id", tenant))
	return c.NoContent(http.StatusNoContent)
}

// DeleteJob handles archiving a job (soft delete)
func (h *JobHandler) DeleteJob(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordJobOperation("soft_delete")

	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant identifier is required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid job id"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	err = h.repo.SoftDelete(c.Request().Context(), tenant, uint(id))
	if errors.Is(err, apperr.ErrNotFound) {
		log.Warn("Job not found for deletion", zap.Uint64("job_id", id), zap.String("tenant_id", tenant))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Job not found"})
	}
	if err != nil {
		log.Error("Failed to delete job", zap.Uint64("job_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete job",
		})
	}

	prometheus.RecordJobsArchived(1)
	log.Info("Job archived", zap.Uint64("job_id", id), zap.String("tenant_id", tenant))
	return c.NoContent(http.StatusNoContent)
}

// HardDeleteJob handles permanently removing a job
func (h *JobHandler) HardDeleteJob(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordJobOperation("hard_delete")

	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant identifier is required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid job id"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	err = h.repo.HardDelete(c.Request().Context(), tenant, uint(id))
	if errors.Is(err, apperr.ErrNotFound) {
		log.Warn("Job not found for hard deletion", zap.Uint64("job_id", id), zap.String("tenant_id", tenant))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Job not found"})
	}
	if err != nil {
		log.Error("Failed to hard delete job", zap.Uint64("job_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete job",
		})
	}

	log.Info("Job permanently deleted", zap.Uint64("job_id", id), zap.String("tenant_id", tenant))
	return c.NoContent(http.StatusNoContent)
}

// BulkDeleteJobs handles archiving a set of jobs in one operation
func (h *JobHandler) BulkDeleteJobs(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordJobOperation("bulk_delete")

	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant identifier is required"})
	}

	var req BulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	count, err := h.repo.BulkSoftDelete(c.Request().Context(), tenant, req.JobIDs)
	if errors.Is(err, apperr.ErrEmptyBulkSet) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "jobIds must not be empty"})
	}
	if err != nil {
		log.Error("Failed to bulk delete jobs",
			zap.Int("requested", len(req.JobIDs)),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete jobs",
		})
	}

	if count == 0 {
		log.Warn("No jobs matched for bulk deletion",
			zap.Int("requested", len(req.JobIDs)),
			zap.String("tenant_id", tenant))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "No jobs found"})
	}

	prometheus.RecordJobsArchived(count)
	log.Info("Jobs archived in bulk",
		zap.Int("requested", len(req.JobIDs)),
		zap.Int64("archived", count),
		zap.String("tenant_id", tenant))
	return c.NoContent(http.StatusNoContent)
}
