package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/roadwatch/service-navigation/internal/application"
	hazardDomain "github.com/roadwatch/service-navigation/internal/domain/hazard"
	"github.com/roadwatch/service-navigation/internal/platform/auth"
	"github.com/roadwatch/service-navigation/internal/platform/middleware"
	"github.com/roadwatch/service-navigation/internal/platform/response"
)

// HazardHandler handles HTTP requests for the hazard catalogue.
type HazardHandler struct {
	service *application.HazardService
}

// NewHazardHandler creates a new HazardHandler.
func NewHazardHandler(service *application.HazardService) *HazardHandler {
	return &HazardHandler{service: service}
}

// RegisterRoutes registers all hazard routes.
func (h *HazardHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	hazards := r.Group("/api/v1/hazards")
	hazards.Use(middleware.AuthMiddleware(jwtManager))
	{
		hazards.POST("", h.ReportHazard)
		hazards.GET("", h.ListHazards)
		hazards.GET("/near", h.NearbyHazards)
		hazards.GET("/:id", h.GetHazard)
	}
}

// ReportHazard handles POST /api/v1/hazards (multipart form, optional photo).
func (h *HazardHandler) ReportHazard(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req application.ReportHazardRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	upload, cleanup, err := formPhoto(c, "photo")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	defer cleanup()

	result, err := h.service.ReportHazard(c.Request.Context(), userID, req, upload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListHazards handles GET /api/v1/hazards?type=&status=&bbox=.
func (h *HazardHandler) ListHazards(c *gin.Context) {
	var filter hazardDomain.ListFilter
	if raw := c.Query("type"); raw != "" {
		t, err := hazardDomain.ParseType(raw)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		filter.Type = t
	}
	if raw := c.Query("status"); raw != "" {
		s, err := hazardDomain.ParseStatus(raw)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		filter.Status = s
	}
	if raw := c.Query("bbox"); raw != "" {
		b, err := parseBBox(raw)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		filter.Bound = b
	}

	page, limit := parsePagination(c)
	result, err := h.service.ListHazards(c.Request.Context(), filter, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// NearbyHazards handles GET /api/v1/hazards/near?lat=&lng=&radius_m=.
func (h *HazardHandler) NearbyHazards(c *gin.Context) {
	lat, err := optionalFloat(c, "lat")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	lng, err := optionalFloat(c, "lng")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if lat == nil || lng == nil {
		response.BadRequest(c, "lat and lng are required")
		return
	}
	radius, err := optionalFloat(c, "radius_m")
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	var radiusMeters float64
	if radius != nil {
		radiusMeters = *radius
	}

	result, err := h.service.FindNearby(c.Request.Context(), *lat, *lng, radiusMeters)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetHazard handles GET /api/v1/hazards/:id.
func (h *HazardHandler) GetHazard(c *gin.Context) {
	hazardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid hazard ID")
		return
	}

	result, err := h.service.GetHazard(c.Request.Context(), hazardID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// formPhoto opens the optional multipart file field. A missing field yields
// a nil upload.
func formPhoto(c *gin.Context, field string) (*application.PhotoUpload, func(), error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &application.PhotoUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Content:     f,
	}, func() { _ = f.Close() }, nil
}
