package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/roadwatch/service-navigation/internal/application"
	"github.com/roadwatch/service-navigation/internal/platform/response"
)

// MapHandler serves the public map bootstrap.
type MapHandler struct {
	service *application.MapService
}

// NewMapHandler creates a new MapHandler.
func NewMapHandler(service *application.MapService) *MapHandler {
	return &MapHandler{service: service}
}

// RegisterRoutes registers the map routes. They need no token.
func (h *MapHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/api/v1/map/bootstrap", h.Bootstrap)
}

// Bootstrap handles GET /api/v1/map/bootstrap?lat=&lng=.
func (h *MapHandler) Bootstrap(c *gin.Context) {
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

	result, err := h.service.Bootstrap(lat, lng)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
