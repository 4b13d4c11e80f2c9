package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrihub-io/agrihub/internal/models"
)

// ListFeatureFlags lists the feature flags and whether they are
// enabled.
// GET /api/fflags
func (api *API) ListFeatureFlags(c *gin.Context) {
	_, span := tracer.Start(c.Request.Context(), "ListFeatureFlags")
	defer span.End()
	c.JSON(http.StatusOK, api.fflags.ListFlags())
}

// GetFeatureFlag reports one feature flag.
// GET /api/fflags/:name
func (api *API) GetFeatureFlag(c *gin.Context) {
	_, span := tracer.Start(c.Request.Context(), "GetFeatureFlag")
	defer span.End()

	name := c.Param("name")
	enabled, err := api.fflags.GetFlag(name)
	if err != nil {
		c.JSON(http.StatusNotFound, models.NewNotFoundError(name))
		return
	}
	c.JSON(http.StatusOK, map[string]bool{name: enabled})
}
