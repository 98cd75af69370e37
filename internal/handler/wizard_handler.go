package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/Kilat-Home-Services/service-booking/internal/application"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/auth"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/middleware"
	"github.com/Kilat-Home-Services/service-booking/internal/platform/response"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WizardHandler handles HTTP requests for the booking wizard.
type WizardHandler struct {
	service *application.WizardService
	limiter *middleware.RateLimiter
	log     *zap.Logger
}

// NewWizardHandler creates a new WizardHandler. A nil limiter disables rate
// limiting.
func NewWizardHandler(service *application.WizardService, limiter *middleware.RateLimiter, log *zap.Logger) *WizardHandler {
	return &WizardHandler{service: service, limiter: limiter, log: log}
}

// StartWizardRequest is the optional body of POST /api/v1/wizards.
type StartWizardRequest struct {
	Fields map[string]string `json:"fields"`
}

// SetFieldsRequest is the body of PATCH /api/v1/wizards/:id/fields.
type SetFieldsRequest struct {
	Fields map[string]string `json:"fields" binding:"required"`
}

// SelectServiceRequest is the body of PUT /api/v1/wizards/:id/service.
type SelectServiceRequest struct {
	ServiceID string `json:"service_id" binding:"required"`
}

// SelectWorkerRequest is the body of PUT /api/v1/wizards/:id/worker.
type SelectWorkerRequest struct {
	WorkerID string `json:"worker_id" binding:"required"`
}

// RegisterRoutes registers all wizard routes on the given router group.
func (h *WizardHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	wizards := r.Group("/api/v1/wizards")
	wizards.Use(authMW, middleware.RequireRole(auth.RoleCustomer))
	if h.limiter != nil {
		wizards.Use(middleware.RateLimitMiddleware(h.limiter, h.log))
	}
	{
		wizards.POST("", h.StartWizard)
		wizards.GET("/:id", h.GetWizard)
		wizards.PATCH("/:id/fields", h.SetFields)
		wizards.PUT("/:id/service", h.SelectService)
		wizards.PUT("/:id/worker", h.SelectWorker)
		wizards.POST("/:id/next", h.Next)
		wizards.POST("/:id/back", h.Back)
		wizards.POST("/:id/submit", h.Submit)
		wizards.DELETE("/:id", h.Abandon)
	}
}

// StartWizard handles POST /api/v1/wizards?service=&worker=.
func (h *WizardHandler) StartWizard(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body StartWizardRequest
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, err.Error())
		return
	}

	req := application.StartRequest{
		ServiceID: c.Query("service"),
		WorkerID:  c.Query("worker"),
		Fields:    body.Fields,
	}
	result, err := h.service.Start(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetWizard handles GET /api/v1/wizards/:id.
func (h *WizardHandler) GetWizard(c *gin.Context) {
	userID, wizardID, ok := wizardParams(c)
	if !ok {
		return
	}

	result, err := h.service.GetWizard(c.Request.Context(), userID, wizardID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SetFields handles PATCH /api/v1/wizards/:id/fields.
func (h *WizardHandler) SetFields(c *gin.Context) {
	userID, wizardID, ok := wizardParams(c)
	if !ok {
		return
	}

	var req SetFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SetFields(c.Request.Context(), userID, wizardID, req.Fields)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SelectService handles PUT /api/v1/wizards/:id/service.
func (h *WizardHandler) SelectService(c *gin.Context) {
	userID, wizardID, ok := wizardParams(c)
	if !ok {
		return
	}

	var req SelectServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SelectService(c.Request.Context(), userID, wizardID, req.ServiceID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SelectWorker handles PUT /api/v1/wizards/:id/worker.
func (h *WizardHandler) SelectWorker(c *gin.Context) {
	userID, wizardID, ok := wizardParams(c)
	if !ok {
		return
	}

	var req SelectWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.SelectWorker(c.Request.Context(), userID, wizardID, req.WorkerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Next handles POST /api/v1/wizards/:id/next.
func (h *WizardHandler) Next(c *gin.Context) {
	userID, wizardID, ok := wizardParams(c)
	if !ok {
		return
	}

	result, err := h.service.Next(c.Request.Context(), userID, wizardID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Back handles POST /api/v1/wizards/:id/back.
func (h *WizardHandler) Back(c *gin.Context) {
	userID, wizardID, ok := wizardParams(c)
	if !ok {
		return
	}

	result, err := h.service.Back(c.Request.Context(), userID, wizardID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Submit handles POST /api/v1/wizards/:id/submit. A failed or blocked
// submission still answers 200; the wizard in the body carries the field
// errors or the banner.
func (h *WizardHandler) Submit(c *gin.Context) {
	userID, wizardID, ok := wizardParams(c)
	if !ok {
		return
	}

	result, err := h.service.Submit(c.Request.Context(), userID, wizardID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if result.Submitted {
		response.Created(c, result)
		return
	}
	response.Success(c, result)
}

// Abandon handles DELETE /api/v1/wizards/:id.
func (h *WizardHandler) Abandon(c *gin.Context) {
	userID, wizardID, ok := wizardParams(c)
	if !ok {
		return
	}

	if err := h.service.Abandon(c.Request.Context(), userID, wizardID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

func wizardParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, uuid.Nil, false
	}

	wizardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid wizard ID")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, wizardID, true
}
