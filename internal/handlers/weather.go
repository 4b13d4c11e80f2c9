package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agrihub-io/agrihub/internal/models"
)

// CreateWeatherSample records a weather observation for a farm the
// caller owns.
// POST /api/weather
func (api *API) CreateWeatherSample(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "CreateWeatherSample")
	defer span.End()

	var request models.AddWeatherSample
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}
	if fieldErr := request.Validate(); fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}

	timestamp := time.Now()
	if request.Timestamp != nil {
		timestamp = *request.Timestamp
	}

	var sample models.WeatherSample
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		if _, apiErr := api.authorizedFarm(c, tx, request.FarmID, gateWrite); apiErr != nil {
			return apiErr
		}

		sample = models.WeatherSample{
			FarmID:        request.FarmID,
			Timestamp:     timestamp,
			Temperature:   request.Temperature,
			Humidity:      request.Humidity,
			Rainfall:      request.Rainfall,
			WindSpeed:     request.WindSpeed,
			WindDirection: request.WindDirection,
			Pressure:      request.Pressure,
			UvIndex:       request.UvIndex,
			Source:        request.Source,
		}
		return tx.Create(&sample).Error
	})
	if err != nil {
		if apiErr := asApiError(err); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
			return
		}
		api.handleWriteError(c, err, request.Source)
		return
	}
	c.JSON(http.StatusCreated, sample)
}

// ListFarmWeather lists the weather history of one farm, newest sample
// first.
// GET /api/farms/:id/weather
func (api *API) ListFarmWeather(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListFarmWeather")
	defer span.End()

	id, ok := uintParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("id"))
		return
	}

	var query timeRangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, models.NewFieldValidationError("limit", "must be an integer"))
		return
	}

	farm, apiErr := api.authorizedFarm(c, api.db_(ctx), id, gateRead)
	if apiErr != nil {
		c.JSON(apiErr.Status, apiErr.Body)
		return
	}

	db := api.db_(ctx).Where("farm_id = ?", farm.ID)
	db, fieldErr := query.apply(db, "timestamp")
	if fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}

	samples := make([]models.WeatherSample, 0)
	res := db.Order("timestamp DESC").Limit(query.limit()).Find(&samples)
	if res.Error != nil {
		if !api.handleListError(c, res.Error) {
			return
		}
		samples = make([]models.WeatherSample, 0)
	}
	c.JSON(http.StatusOK, samples)
}

// GetFarmWeatherLatest renders the most recent observation for a farm.
// GET /api/farms/:id/weather/latest
func (api *API) GetFarmWeatherLatest(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "GetFarmWeatherLatest")
	defer span.End()

	id, ok := uintParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("id"))
		return
	}

	farm, apiErr := api.authorizedFarm(c, api.db_(ctx), id, gateRead)
	if apiErr != nil {
		c.JSON(apiErr.Status, apiErr.Body)
		return
	}

	var sample models.WeatherSample
	res := api.db_(ctx).Where("farm_id = ?", farm.ID).Order("timestamp DESC").First(&sample)
	if res.Error != nil {
		if apiErr := api.classifyReadError(c, res.Error, "weather"); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
		}
		return
	}
	c.JSON(http.StatusOK, sample)
}
