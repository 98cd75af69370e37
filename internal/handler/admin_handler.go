package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Kilat-Home-Services/service-booking/internal/application"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/auth"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/middleware"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/response"
)

// CatalogInvalidator drops cached catalog entries.
type CatalogInvalidator interface {
	InvalidateService(ctx context.Context, id string) error
	InvalidateProfessional(ctx context.Context, id string) error
}

// AdminBookingHandler handles admin HTTP requests for booking management.
type AdminBookingHandler struct {
	service *application.LedgerService
	catalog CatalogInvalidator
}

// NewAdminBookingHandler creates a new AdminBookingHandler. The ledger
// service is nil when submissions go to the remote booking API; the ledger
// routes are then not registered.
func NewAdminBookingHandler(service *application.LedgerService, catalog CatalogInvalidator) *AdminBookingHandler {
	return &AdminBookingHandler{service: service, catalog: catalog}
}

// RegisterRoutes registers admin booking routes.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	if h.service != nil {
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats/bookings", h.BookingStats)
	}
	if h.catalog != nil {
		admin.DELETE("/catalog/services/:id/cache", h.InvalidateService)
		admin.DELETE("/catalog/professionals/:id/cache", h.InvalidateProfessional)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminBookingHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	bookings, total, err := h.service.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, bookings, total, page, limit)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// InvalidateService handles DELETE /api/v1/admin/catalog/services/:id/cache.
func (h *AdminBookingHandler) InvalidateService(c *gin.Context) {
	if err := h.catalog.InvalidateService(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// InvalidateProfessional handles DELETE /api/v1/admin/catalog/professionals/:id/cache.
func (h *AdminBookingHandler) InvalidateProfessional(c *gin.Context) {
	if err := h.catalog.InvalidateProfessional(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
