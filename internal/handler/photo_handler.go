package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/roadwatch/service-navigation/internal/application"
	"github.com/roadwatch/service-navigation/internal/platform/auth"
	"github.com/roadwatch/service-navigation/internal/platform/middleware"
	"github.com/roadwatch/service-navigation/internal/platform/response"
)

// PhotoHandler handles HTTP requests for hazard photo operations.
type PhotoHandler struct {
	service *application.PhotoService
}

// NewPhotoHandler creates a new PhotoHandler.
func NewPhotoHandler(service *application.PhotoService) *PhotoHandler {
	return &PhotoHandler{service: service}
}

// RegisterRoutes registers all photo routes.
func (h *PhotoHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	photos := r.Group("/api/v1/hazards")
	photos.Use(authMW)
	{
		photos.POST("/:id/photos", h.UploadPhoto)
		photos.GET("/:id/photos", h.GetHazardPhotos)
	}
}

// UploadPhoto handles POST /api/v1/hazards/:id/photos (multipart: photo, caption).
func (h *PhotoHandler) UploadPhoto(c *gin.Context) {
	hazardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid hazard ID")
		return
	}

	uploaderID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	upload, cleanup, err := formPhoto(c, "photo")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	defer cleanup()
	if upload == nil {
		response.BadRequest(c, "photo file is required")
		return
	}

	result, err := h.service.UploadPhoto(c.Request.Context(), hazardID, uploaderID, *upload, c.PostForm("caption"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetHazardPhotos handles GET /api/v1/hazards/:id/photos.
func (h *PhotoHandler) GetHazardPhotos(c *gin.Context) {
	hazardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid hazard ID")
		return
	}

	result, err := h.service.GetHazardPhotos(c.Request.Context(), hazardID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
