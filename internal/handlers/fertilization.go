package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agrihub-io/agrihub/internal/models"
)

// CreateFertilizationEvent logs a fertilizer application on a field the
// caller owns. Events are append-only.
// POST /api/fertilization
func (api *API) CreateFertilizationEvent(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "CreateFertilizationEvent")
	defer span.End()

	var request models.AddFertilizationEvent
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}
	if fieldErr := request.Validate(); fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}

	var event models.FertilizationEvent
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		if _, apiErr := api.authorizedField(c, tx, request.FieldID, gateWrite); apiErr != nil {
			return apiErr
		}

		event = models.FertilizationEvent{
			FieldID:        request.FieldID,
			Date:           request.Date,
			FertilizerType: request.FertilizerType,
			Amount:         request.Amount,
			Method:         request.Method,
			NpkRatio:       request.NpkRatio,
			Cost:           request.Cost,
			Notes:          request.Notes,
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		if apiErr := asApiError(err); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
			return
		}
		api.handleWriteError(c, err, request.FertilizerType)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// ListFieldFertilization lists the fertilization history of one field,
// most recent application first.
// GET /api/fields/:id/fertilization
func (api *API) ListFieldFertilization(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListFieldFertilization")
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

	field, apiErr := api.authorizedField(c, api.db_(ctx), id, gateRead)
	if apiErr != nil {
		c.JSON(apiErr.Status, apiErr.Body)
		return
	}

	db := api.db_(ctx).Where("field_id = ?", field.ID)
	db, fieldErr := query.apply(db, "date")
	if fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}

	events := make([]models.FertilizationEvent, 0)
	res := db.Order("date DESC").Limit(query.limit()).Find(&events)
	if res.Error != nil {
		if !api.handleListError(c, res.Error) {
			return
		}
		events = make([]models.FertilizationEvent, 0)
	}
	c.JSON(http.StatusOK, events)
}
