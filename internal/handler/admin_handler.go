package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/roadwatch/service-navigation/internal/application"
	"github.com/roadwatch/service-navigation/internal/platform/auth"
	"github.com/roadwatch/service-navigation/internal/platform/middleware"
	"github.com/roadwatch/service-navigation/internal/platform/response"
)

// AdminHazardHandler handles admin HTTP requests for hazard moderation.
type AdminHazardHandler struct {
	service *application.HazardService
}

// NewAdminHazardHandler creates a new AdminHazardHandler.
func NewAdminHazardHandler(service *application.HazardService) *AdminHazardHandler {
	return &AdminHazardHandler{service: service}
}

// RegisterRoutes registers admin hazard routes.
func (h *AdminHazardHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.POST("/hazards/:id/verify", h.moderate(application.ActionVerify))
		admin.POST("/hazards/:id/resolve", h.moderate(application.ActionResolve))
		admin.POST("/hazards/:id/reject", h.moderate(application.ActionReject))
		admin.GET("/stats/hazards", h.HazardStats)
	}
}

// moderate handles POST /api/v1/admin/hazards/:id/{verify,resolve,reject}.
func (h *AdminHazardHandler) moderate(action application.ModerationAction) gin.HandlerFunc {
	return func(c *gin.Context) {
		hazardID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.BadRequest(c, "invalid hazard ID")
			return
		}

		var body struct {
			Note string `json:"note"`
		}
		_ = c.ShouldBindJSON(&body)

		result, err := h.service.Moderate(c.Request.Context(), hazardID, action, body.Note)
		if err != nil {
			response.Error(c, err)
			return
		}

		response.Success(c, result)
	}
}

// HazardStats handles GET /api/v1/admin/stats/hazards.
func (h *AdminHazardHandler) HazardStats(c *gin.Context) {
	stats, err := h.service.GetHazardStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
