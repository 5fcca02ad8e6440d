package handler

import (
	"net/http"
	"net/mail"
	"time"

	"fieldpro-service/internal/model"
	"fieldpro-service/internal/repository"
	"fieldpro-service/pkg/logger"
	"fieldpro-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TechnicianRequest defines the structure for technician creation requests
type TechnicianRequest struct {
	Name  string  `json:"name"`
	Email *string `json:"email"`
}

// TechnicianHandler serves the technician endpoints
type TechnicianHandler struct {
	repo repository.TechnicianRepository
}

// NewTechnicianHandler creates a TechnicianHandler
func NewTechnicianHandler(repo repository.TechnicianRepository) *TechnicianHandler {
	return &TechnicianHandler{repo: repo}
}

// ListTechnicians handles retrieving the tenant's technicians
func (h *TechnicianHandler) ListTechnicians(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTechnicianOperation("list")

	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant identifier is required"})
	}

	defer prometheus.TrackDBOperation("select")(time.Now())

	technicians, err := h.repo.List(c.Request().Context(), tenant)
	if err != nil {
		log.Error("Failed to list technicians", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve technicians",
		})
	}

	log.Info("Technicians retrieved",
		zap.String("tenant_id", tenant),
		zap.Int("count", len(technicians)))
	return c.JSON(http.StatusOK, technicians)
}

// CreateTechnician handles creating a new technician
func (h *TechnicianHandler) CreateTechnician(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTechnicianOperation("create")

	tenant, ok := tenantID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant identifier is required"})
	}

	var req TechnicianRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if len(req.Name) > 100 {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "name must be at most 100 characters",
		})
	}
	if req.Email != nil && *req.Email != "" {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "email must be a valid address",
			})
		}
	}

	technician := model.Technician{
		Name:  req.Name,
		Email: req.Email,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := h.repo.Create(c.Request().Context(), tenant, &technician); err != nil {
		log.Error("Failed to create technician",
			zap.String("name", req.Name),
			zap.String("tenant_id", tenant),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create technician",
		})
	}

	log.Info("Technician created",
		zap.Uint("technician_id", technician.ID),
		zap.String("name", technician.Name),
		zap.String("tenant_id", tenant))
	return c.JSON(http.StatusCreated, technician)
}
