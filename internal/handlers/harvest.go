package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agrihub-io/agrihub/internal/models"
)

// CreateHarvestRecord logs a harvest on a field the caller owns.
// Records are append-only.
// POST /api/harvests
func (api *API) CreateHarvestRecord(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "CreateHarvestRecord")
	defer span.End()

	var request models.AddHarvestRecord
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}
	if fieldErr := request.Validate(); fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}

	var record models.HarvestRecord
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		if _, apiErr := api.authorizedField(c, tx, request.FieldID, gateWrite); apiErr != nil {
			return apiErr
		}

		record = models.HarvestRecord{
			FieldID:      request.FieldID,
			CropType:     request.CropType,
			HarvestDate:  request.HarvestDate,
			Quantity:     request.Quantity,
			Quality:      request.Quality,
			MarketPrice:  request.MarketPrice,
			TotalRevenue: request.TotalRevenue,
			Notes:        request.Notes,
		}
		return tx.Create(&record).Error
	})
	if err != nil {
		if apiErr := asApiError(err); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
			return
		}
		api.handleWriteError(c, err, request.CropType)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// ListFieldHarvests lists the harvest history of one field, most recent
// first.
// GET /api/fields/:id/harvests
func (api *API) ListFieldHarvests(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListFieldHarvests")
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
	db, fieldErr := query.apply(db, "harvest_date")
	if fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}

	records := make([]models.HarvestRecord, 0)
	res := db.Order("harvest_date DESC").Limit(query.limit()).Find(&records)
	if res.Error != nil {
		if !api.handleListError(c, res.Error) {
			return
		}
		records = make([]models.HarvestRecord, 0)
	}
	c.JSON(http.StatusOK, records)
}
