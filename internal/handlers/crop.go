package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrihub-io/agrihub/internal/models"
)

// ListCrops lists the crop catalog. Public, no identity needed.
// GET /api/crops
func (api *API) ListCrops(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListCrops")
	defer span.End()

	db := api.db_(ctx)
	if category := c.Query("category"); category != "" {
		db = db.Where("category = ?", category)
	}

	crops := make([]models.Crop, 0)
	res := db.Scopes(FilterAndPaginate(&models.Crop{}, c, "name")).Find(&crops)
	if res.Error != nil {
		if !api.handleListError(c, res.Error) {
			return
		}
		crops = make([]models.Crop, 0)
	}
	c.Header("Cache-Control", CachePeriod)
	c.JSON(http.StatusOK, crops)
}

// GetCrop renders one catalog entry. Public.
// GET /api/crops/:id
func (api *API) GetCrop(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "GetCrop")
	defer span.End()

	id, ok := uintParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("id"))
		return
	}

	var crop models.Crop
	if res := api.db_(ctx).First(&crop, id); res.Error != nil {
		if apiErr := api.classifyReadError(c, res.Error, "crop"); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
		}
		return
	}
	c.Header("Cache-Control", CachePeriod)
	c.JSON(http.StatusOK, crop)
}

// CreateCrop adds a catalog entry. Admin only.
// POST /api/crops
func (api *API) CreateCrop(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "CreateCrop")
	defer span.End()

	var request models.AddCrop
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}
	if fieldErr := request.Validate(); fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}

	user := api.CurrentUser(c)
	if !user.IsAdmin() {
		c.JSON(http.StatusForbidden, models.NewNotAllowedError("admin role required"))
		return
	}

	crop := models.Crop{
		Name:              request.Name,
		ScientificName:    request.ScientificName,
		Category:          request.Category,
		GrowingSeasonDays: request.GrowingSeasonDays,
		WaterRequirement:  request.WaterRequirement,
		TemperatureMin:    request.TemperatureMin,
		TemperatureMax:    request.TemperatureMax,
		SoilTypePreferred: request.SoilTypePreferred,
		Description:       request.Description,
	}
	if err := api.db_(ctx).Create(&crop).Error; err != nil {
		api.handleWriteError(c, err, request.Name)
		return
	}
	c.JSON(http.StatusCreated, crop)
}
