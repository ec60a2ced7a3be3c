package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roadwatch/service-navigation/internal/application"
	"github.com/roadwatch/service-navigation/internal/navigation"
	"github.com/roadwatch/service-navigation/internal/platform/auth"
	"github.com/roadwatch/service-navigation/internal/platform/middleware"
	"github.com/roadwatch/service-navigation/internal/platform/response"
)

const streamKeepAlive = 15 * time.Second

// NavigationHandler handles HTTP requests for navigation sessions.
type NavigationHandler struct {
	service *application.NavigationService
	logger  *zap.Logger
}

// NewNavigationHandler creates a new NavigationHandler.
func NewNavigationHandler(service *application.NavigationService, logger *zap.Logger) *NavigationHandler {
	return &NavigationHandler{service: service, logger: logger}
}

// RegisterRoutes registers all navigation session routes.
func (h *NavigationHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	sessions := r.Group("/api/v1/navigation/sessions")
	sessions.Use(middleware.AuthMiddleware(jwtManager))
	{
		sessions.POST("", h.OpenSession)
		sessions.GET("/:id", h.GetSession)
		sessions.DELETE("/:id", h.CloseSession)
		sessions.POST("/:id/render", h.Render)
		sessions.POST("/:id/select", h.Select)
		sessions.DELETE("/:id/select", h.ClearSelection)
		sessions.POST("/:id/start", h.Start)
		sessions.POST("/:id/pause", h.control(h.service.Pause))
		sessions.POST("/:id/resume", h.control(h.service.Resume))
		sessions.POST("/:id/stop", h.control(h.service.Stop))
		sessions.GET("/:id/stream", h.Stream)
		sessions.GET("/:id/summary", h.Summary)
	}
}

// sessionParams extracts the caller and the :id session.
func sessionParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return uuid.Nil, uuid.Nil, false
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid session ID")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, sessionID, true
}

// OpenSession handles POST /api/v1/navigation/sessions?route_id=.
func (h *NavigationHandler) OpenSession(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.OpenSession(c.Request.Context(), userID, c.Query("route_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetSession handles GET /api/v1/navigation/sessions/:id.
func (h *NavigationHandler) GetSession(c *gin.Context) {
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}

	result, err := h.service.GetSession(userID, sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CloseSession handles DELETE /api/v1/navigation/sessions/:id.
func (h *NavigationHandler) CloseSession(c *gin.Context) {
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}

	if err := h.service.CloseSession(userID, sessionID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Render handles POST /api/v1/navigation/sessions/:id/render.
func (h *NavigationHandler) Render(c *gin.Context) {
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}

	result, err := h.service.Render(c.Request.Context(), userID, sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Select handles POST /api/v1/navigation/sessions/:id/select {marker_id}.
func (h *NavigationHandler) Select(c *gin.Context) {
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}

	var body struct {
		MarkerID string `json:"marker_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Select(userID, sessionID, body.MarkerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ClearSelection handles DELETE /api/v1/navigation/sessions/:id/select.
func (h *NavigationHandler) ClearSelection(c *gin.Context) {
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}

	result, err := h.service.ClearSelection(userID, sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// Start handles POST /api/v1/navigation/sessions/:id/start.
func (h *NavigationHandler) Start(c *gin.Context) {
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}

	result, err := h.service.Start(userID, sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// control handles POST /api/v1/navigation/sessions/:id/{pause,resume,stop}.
func (h *NavigationHandler) control(op func(userID, sessionID uuid.UUID) (*navigation.Telemetry, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, sessionID, ok := sessionParams(c)
		if !ok {
			return
		}

		result, err := op(userID, sessionID)
		if err != nil {
			response.Error(c, err)
			return
		}

		response.Success(c, result)
	}
}

// Stream handles GET /api/v1/navigation/sessions/:id/stream as server-sent
// events: one "telemetry" event per tick, then "end" when the trip finishes.
func (h *NavigationHandler) Stream(c *gin.Context) {
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}

	frames, cancel, err := h.service.Subscribe(userID, sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer cancel()

	keepAlive := time.NewTicker(streamKeepAlive)
	defer keepAlive.Stop()

	var last *navigation.Telemetry
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-keepAlive.C:
			c.SSEvent("ping", time.Now().UTC())
			return true
		case frame, ok := <-frames:
			if !ok {
				c.SSEvent("end", last)
				return false
			}
			last = &frame
			c.SSEvent("telemetry", frame)
			return true
		}
	})

	h.logger.Debug("telemetry stream closed", zap.String("session_id", sessionID.String()))
}

// Summary handles GET /api/v1/navigation/sessions/:id/summary.
func (h *NavigationHandler) Summary(c *gin.Context) {
	userID, sessionID, ok := sessionParams(c)
	if !ok {
		return
	}

	result, err := h.service.Summary(userID, sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
