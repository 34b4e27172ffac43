package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/credit-api/internal/service"
)

// LocationHandler serves the city/department catalog.
type LocationHandler struct {
	locationService *service.LocationService
}

// NewLocationHandler creates a new location handler.
func NewLocationHandler(locationService *service.LocationService) *LocationHandler {
	return &LocationHandler{locationService: locationService}
}

// SearchCities handles GET /locations/cities?q=...&limit=...
func (h *LocationHandler) SearchCities(c *gin.Context) {
	query := c.Query("q")

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	cities, err := h.locationService.SearchCities(query, limit)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"cities": cities})
}

// GetCity handles GET /locations/cities/:id
func (h *LocationHandler) GetCity(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid city id", "error_type": "validation_error"})
		return
	}

	city, err := h.locationService.GetCity(id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"city": city})
}
