package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/agrihub-io/agrihub/internal/models"
)

// ListFarmFields lists the fields of one farm.
// GET /api/farms/:id/fields
func (api *API) ListFarmFields(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListFarmFields")
	defer span.End()

	farmID, ok := uintParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("id"))
		return
	}

	farm, apiErr := api.authorizedFarm(c, api.db_(ctx), farmID, gateRead)
	if apiErr != nil {
		c.JSON(apiErr.Status, apiErr.Body)
		return
	}

	fields := make([]models.Field, 0)
	res := api.db_(ctx).
		Where("farm_id = ?", farm.ID).
		Scopes(FilterAndPaginate(&models.Field{}, c, "id")).
		Find(&fields)
	if res.Error != nil {
		if !api.handleListError(c, res.Error) {
			return
		}
		fields = make([]models.Field, 0)
	}
	c.JSON(http.StatusOK, fields)
}

// CreateField adds a field to a farm the caller owns.
// POST /api/fields
func (api *API) CreateField(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "CreateField")
	defer span.End()

	var request models.AddField
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}
	if fieldErr := request.Validate(); fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}
	span.SetAttributes(attribute.String("name", request.Name))

	var field models.Field
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		if _, apiErr := api.authorizedFarm(c, tx, request.FarmID, gateWrite); apiErr != nil {
			return apiErr
		}
		field = models.Field{
			FarmID:              request.FarmID,
			Name:                request.Name,
			Area:                request.Area,
			Boundaries:          request.Boundaries,
			SoilType:            request.SoilType,
			CropType:            request.CropType,
			PlantingDate:        request.PlantingDate,
			ExpectedHarvestDate: request.ExpectedHarvestDate,
			IrrigationType:      request.IrrigationType,
			Status:              "active",
		}
		return tx.Create(&field).Error
	})
	if err != nil {
		if apiErr := asApiError(err); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
			return
		}
		api.handleWriteError(c, err, request.Name)
		return
	}
	c.JSON(http.StatusCreated, field)
}

// GetField renders one field.
// GET /api/fields/:id
func (api *API) GetField(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "GetField")
	defer span.End()

	id, ok := uintParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("id"))
		return
	}

	field, apiErr := api.authorizedField(c, api.db_(ctx), id, gateRead)
	if apiErr != nil {
		c.JSON(apiErr.Status, apiErr.Body)
		return
	}
	c.JSON(http.StatusOK, field)
}

// UpdateField patches a field.
// PATCH /api/fields/:id
func (api *API) UpdateField(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "UpdateField")
	defer span.End()

	id, ok := uintParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("id"))
		return
	}

	var request models.UpdateField
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}
	if fieldErr := request.Validate(); fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}

	var field *models.Field
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		var apiErr *ApiResponseError
		field, apiErr = api.authorizedField(c, tx, id, gateWrite)
		if apiErr != nil {
			return apiErr
		}

		if request.Name != nil {
			field.Name = *request.Name
		}
		if request.Area != nil {
			field.Area = *request.Area
		}
		if request.Boundaries != nil {
			field.Boundaries = *request.Boundaries
		}
		if request.SoilType != nil {
			field.SoilType = *request.SoilType
		}
		if request.CropType != nil {
			field.CropType = *request.CropType
		}
		if request.PlantingDate != nil {
			field.PlantingDate = request.PlantingDate
		}
		if request.ExpectedHarvestDate != nil {
			field.ExpectedHarvestDate = request.ExpectedHarvestDate
		}
		if request.IrrigationType != nil {
			field.IrrigationType = *request.IrrigationType
		}
		if request.Status != nil {
			field.Status = *request.Status
		}
		return tx.Save(field).Error
	})
	if err != nil {
		if apiErr := asApiError(err); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
			return
		}
		api.handleWriteError(c, err, c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, field)
}

// DeleteField removes a field. The cascade-delete flag extends the
// delete to the field's readings, events, harvests and attached devices.
// DELETE /api/fields/:id
func (api *API) DeleteField(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "DeleteField")
	defer span.End()

	id, ok := uintParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("id"))
		return
	}

	cascade := api.cascadeDelete()
	var field *models.Field
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		var apiErr *ApiResponseError
		field, apiErr = api.authorizedField(c, tx, id, gateWrite)
		if apiErr != nil {
			return apiErr
		}
		if cascade {
			if err := deleteFieldDescendants(tx, field.ID); err != nil {
				return err
			}
		}
		return tx.Delete(&models.Field{}, field.ID).Error
	})
	if err != nil {
		if apiErr := asApiError(err); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
			return
		}
		api.handleWriteError(c, err, c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, field)
}

func deleteFieldDescendants(tx *gorm.DB, fieldID uint) error {
	for _, model := range []interface{}{
		&models.SensorReading{}, &models.IrrigationEvent{},
		&models.FertilizationEvent{}, &models.HarvestRecord{},
		&models.Device{},
	} {
		if err := tx.Where("field_id = ?", fieldID).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
