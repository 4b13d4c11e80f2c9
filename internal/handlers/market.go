package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agrihub-io/agrihub/internal/models"
)

// ListMarketPrices lists price observations, newest first. Public, no
// identity needed. crop_type and region narrow the result.
// GET /api/market-prices
func (api *API) ListMarketPrices(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListMarketPrices")
	defer span.End()

	var query timeRangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, models.NewFieldValidationError("limit", "must be an integer"))
		return
	}

	db := api.db_(ctx)
	if cropType := c.Query("crop_type"); cropType != "" {
		db = db.Where("crop_type = ?", cropType)
	}
	if region := c.Query("region"); region != "" {
		db = db.Where("region = ?", region)
	}
	db, fieldErr := query.apply(db, "date")
	if fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}

	prices := make([]models.MarketPrice, 0)
	res := db.Order("date DESC").Limit(query.limit()).Find(&prices)
	if res.Error != nil {
		if !api.handleListError(c, res.Error) {
			return
		}
		prices = make([]models.MarketPrice, 0)
	}
	c.Header("Cache-Control", CachePeriod)
	c.JSON(http.StatusOK, prices)
}

// ListMarketPricesByCrop lists the observations for one crop, newest
// first. Public.
// GET /api/market-prices/crop/:cropType
func (api *API) ListMarketPricesByCrop(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListMarketPricesByCrop")
	defer span.End()

	var query timeRangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, models.NewFieldValidationError("limit", "must be an integer"))
		return
	}

	db := api.db_(ctx).Where("crop_type = ?", c.Param("cropType"))
	if region := c.Query("region"); region != "" {
		db = db.Where("region = ?", region)
	}
	db, fieldErr := query.apply(db, "date")
	if fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}

	prices := make([]models.MarketPrice, 0)
	res := db.Order("date DESC").Limit(query.limit()).Find(&prices)
	if res.Error != nil {
		if !api.handleListError(c, res.Error) {
			return
		}
		prices = make([]models.MarketPrice, 0)
	}
	c.Header("Cache-Control", CachePeriod)
	c.JSON(http.StatusOK, prices)
}

// CreateMarketPrice records a price observation. Admin only.
// POST /api/market-prices
func (api *API) CreateMarketPrice(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "CreateMarketPrice")
	defer span.End()

	var request models.AddMarketPrice
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

	date := time.Now()
	if request.Date != nil {
		date = *request.Date
	}
	currency := request.Currency
	if currency == "" {
		currency = "USD"
	}
	price := models.MarketPrice{
		CropType: request.CropType,
		Region:   request.Region,
		Price:    request.Price,
		Currency: currency,
		Source:   request.Source,
		Date:     date,
	}
	if err := api.db_(ctx).Create(&price).Error; err != nil {
		api.handleWriteError(c, err, request.CropType)
		return
	}
	c.JSON(http.StatusCreated, price)
}
