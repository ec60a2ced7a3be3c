package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/roadwatch/service-navigation/internal/application"
	"github.com/roadwatch/service-navigation/internal/platform/auth"
	"github.com/roadwatch/service-navigation/internal/platform/middleware"
	"github.com/roadwatch/service-navigation/internal/platform/response"
)

// HistoryHandler handles HTTP requests for the caller's route history.
type HistoryHandler struct {
	service *application.HistoryService
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(service *application.HistoryService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// RegisterRoutes registers all history routes.
func (h *HistoryHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	history := r.Group("/api/v1/history")
	history.Use(middleware.AuthMiddleware(jwtManager))
	{
		history.GET("", h.GetHistory)
		history.DELETE("", h.ClearHistory)
		history.GET("/trips", h.ListTrips)
		history.DELETE("/:id", h.RemoveEntry)
		history.POST("/:id/favorite", h.ToggleFavorite)
	}
}

// GetHistory handles GET /api/v1/history?favorites=true.
func (h *HistoryHandler) GetHistory(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	favoritesOnly, _ := strconv.ParseBool(c.DefaultQuery("favorites", "false"))
	result, err := h.service.GetHistory(c.Request.Context(), userID, favoritesOnly)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ClearHistory handles DELETE /api/v1/history.
func (h *HistoryHandler) ClearHistory(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	removed, err := h.service.ClearHistory(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"removed": removed})
}

// RemoveEntry handles DELETE /api/v1/history/:id.
func (h *HistoryHandler) RemoveEntry(c *gin.Context) {
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid history entry ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	if err := h.service.RemoveEntry(c.Request.Context(), userID, entryID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ToggleFavorite handles POST /api/v1/history/:id/favorite.
func (h *HistoryHandler) ToggleFavorite(c *gin.Context) {
	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid history entry ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.ToggleFavorite(c.Request.Context(), userID, entryID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListTrips handles GET /api/v1/history/trips.
func (h *HistoryHandler) ListTrips(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	page, limit := parsePagination(c)
	result, err := h.service.ListTrips(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}
