package middleware

import (
	"net/http"
	"strings"

	"fieldpro-service/pkg/apperr"
	"fieldpro-service/pkg/logger"
	"fieldpro-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TenantHeader is the request header carrying the caller's tenant id
const TenantHeader = "X-Tenant"

// TenantMiddleware resolves the tenant id from the X-Tenant header.
// Resolution is strict: a missing or blank header fails the request,
// there is no default tenant fallback.
func TenantMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		tenantID := strings.TrimSpace(c.Request().Header.Get(TenantHeader))
		if tenantID == "" {
			log.Warn("Rejecting request without tenant", zap.Error(apperr.ErrMissingTenant))
			prometheus.TenantContextMissingCounter.Inc()
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "X-Tenant header is required",
			})
		}

		// Store tenant information for handlers
		c.Set("tenant_id", tenantID)

		return next(c)
	}
}

// GetTenantIDFromContext retrieves the tenant ID from the context
// Returns "", false if tenant ID is not found
func GetTenantIDFromContext(c echo.Context) (string, bool) {
	tenantID, ok := c.Get("tenant_id").(string)
	return tenantID, ok && tenantID != ""
}
