package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agrihub-io/agrihub/internal/models"
)

// CreateIrrigationEvent logs a watering run on a field the caller owns.
// Events are append-only.
// POST /api/irrigation
func (api *API) CreateIrrigationEvent(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "CreateIrrigationEvent")
	defer span.End()

	var request models.AddIrrigationEvent
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}
	if fieldErr := request.Validate(); fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}

	var event models.IrrigationEvent
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		if _, apiErr := api.authorizedField(c, tx, request.FieldID, gateWrite); apiErr != nil {
			return apiErr
		}
		if request.DeviceID != nil {
			if _, apiErr := api.authorizedDevice(c, tx, *request.DeviceID, gateWrite); apiErr != nil {
				return apiErr
			}
		}

		event = models.IrrigationEvent{
			FieldID:     request.FieldID,
			StartTime:   request.StartTime,
			EndTime:     request.EndTime,
			WaterAmount: request.WaterAmount,
			Method:      request.Method,
			Automated:   request.Automated,
			DeviceID:    request.DeviceID,
			Notes:       request.Notes,
		}
		return tx.Create(&event).Error
	})
	if err != nil {
		if apiErr := asApiError(err); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
			return
		}
		api.handleWriteError(c, err, request.Method)
		return
	}
	c.JSON(http.StatusCreated, event)
}

// ListFieldIrrigation lists the irrigation history of one field, most
// recent run first.
// GET /api/fields/:id/irrigation
func (api *API) ListFieldIrrigation(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListFieldIrrigation")
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
	db, fieldErr := query.apply(db, "start_time")
	if fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}

	events := make([]models.IrrigationEvent, 0)
	res := db.Order("start_time DESC").Limit(query.limit()).Find(&events)
	if res.Error != nil {
		if !api.handleListError(c, res.Error) {
			return
		}
		events = make([]models.IrrigationEvent, 0)
	}
	c.JSON(http.StatusOK, events)
}
