package handler

import (
	"errors"

	"github.com/Kilat-Home-Services/service-booking/internal/domain/catalog"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/apperr"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/response"
	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the read-only service and professional catalog.
type CatalogHandler struct {
	provider catalog.Provider
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(provider catalog.Provider) *CatalogHandler {
	return &CatalogHandler{provider: provider}
}

// RegisterRoutes registers the public catalog routes.
func (h *CatalogHandler) RegisterRoutes(r *gin.RouterGroup) {
	cat := r.Group("/api/v1/catalog")
	{
		cat.GET("/services", h.ListServices)
		cat.GET("/services/:id", h.GetService)
		cat.GET("/professionals", h.ListProfessionals)
		cat.GET("/professionals/:id", h.GetProfessional)
	}
}

// ListServices handles GET /api/v1/catalog/services?q=&category=.
func (h *CatalogHandler) ListServices(c *gin.Context) {
	q := catalog.Query{Text: c.Query("q"), Category: c.Query("category")}
	services, err := h.provider.ListServices(c.Request.Context(), q)
	if err != nil {
		catalogError(c, err, "Service", "")
		return
	}
	if services == nil {
		services = []catalog.Service{}
	}
	response.Success(c, services)
}

// GetService handles GET /api/v1/catalog/services/:id.
func (h *CatalogHandler) GetService(c *gin.Context) {
	id := c.Param("id")
	svc, err := h.provider.GetService(c.Request.Context(), id)
	if err != nil {
		catalogError(c, err, "Service", id)
		return
	}
	response.Success(c, svc)
}

// ListProfessionals handles GET /api/v1/catalog/professionals?q=&specialty=.
func (h *CatalogHandler) ListProfessionals(c *gin.Context) {
	q := catalog.Query{Text: c.Query("q"), Category: c.Query("specialty")}
	pros, err := h.provider.ListProfessionals(c.Request.Context(), q)
	if err != nil {
		catalogError(c, err, "Professional", "")
		return
	}
	if pros == nil {
		pros = []catalog.Professional{}
	}
	response.Success(c, pros)
}

// GetProfessional handles GET /api/v1/catalog/professionals/:id.
func (h *CatalogHandler) GetProfessional(c *gin.Context) {
	id := c.Param("id")
	pro, err := h.provider.GetProfessional(c.Request.Context(), id)
	if err != nil {
		catalogError(c, err, "Professional", id)
		return
	}
	response.Success(c, pro)
}

func catalogError(c *gin.Context, err error, entity, id string) {
	if errors.Is(err, catalog.ErrNotFound) {
		response.Error(c, apperr.NewNotFoundError(entity, id))
		return
	}
	_ = c.Error(err)
	response.Error(c, apperr.NewUnavailableError("catalog unavailable", err))
}
