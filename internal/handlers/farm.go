package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/agrihub-io/agrihub/internal/models"
)

// ListFarms lists the farms owned by the caller. Admins see every farm.
// GET /api/farms
func (api *API) ListFarms(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListFarms")
	defer span.End()

	user := api.CurrentUser(c)
	db := api.db_(ctx)
	if !user.IsAdmin() {
		db = db.Where("owner_id = ?", user.ID)
	}

	farms := make([]models.Farm, 0)
	res := db.Scopes(FilterAndPaginate(&models.Farm{}, c, "id")).Find(&farms)
	if res.Error != nil {
		if !api.handleListError(c, res.Error) {
			return
		}
		farms = make([]models.Farm, 0)
	}
	c.JSON(http.StatusOK, farms)
}

// CreateFarm creates a farm owned by the caller.
// POST /api/farms
func (api *API) CreateFarm(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "CreateFarm")
	defer span.End()

	var request models.AddFarm
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}
	if fieldErr := request.Validate(); fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}
	span.SetAttributes(attribute.String("name", request.Name))

	user := api.CurrentUser(c)
	farm := models.Farm{
		OwnerID:     user.ID,
		Name:        request.Name,
		Description: request.Description,
		TotalArea:   request.TotalArea,
		Location:    request.Location,
		Address:     request.Address,
		Country:     request.Country,
		Region:      request.Region,
		FarmType:    request.FarmType,
	}
	if farm.FarmType == "" {
		farm.FarmType = "crop"
	}
	farm.Status = "active"

	if err := api.db_(ctx).Create(&farm).Error; err != nil {
		api.handleWriteError(c, err, request.Name)
		return
	}
	c.JSON(http.StatusCreated, farm)
}

// GetFarm renders one farm.
// GET /api/farms/:id
func (api *API) GetFarm(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "GetFarm")
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
	c.JSON(http.StatusOK, farm)
}

// UpdateFarm patches a farm. The gate and the update run in one
// transaction so the ownership check and the mutation see the same row.
// PATCH /api/farms/:id
func (api *API) UpdateFarm(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "UpdateFarm")
	defer span.End()

	id, ok := uintParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("id"))
		return
	}

	var request models.UpdateFarm
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}
	if fieldErr := request.Validate(); fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}

	var farm *models.Farm
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		var apiErr *ApiResponseError
		farm, apiErr = api.authorizedFarm(c, tx, id, gateWrite)
		if apiErr != nil {
			return apiErr
		}

		if request.Name != nil {
			farm.Name = *request.Name
		}
		if request.Description != nil {
			farm.Description = *request.Description
		}
		if request.TotalArea != nil {
			farm.TotalArea = *request.TotalArea
		}
		if request.Location != nil {
			farm.Location = *request.Location
		}
		if request.Address != nil {
			farm.Address = *request.Address
		}
		if request.FarmType != nil {
			farm.FarmType = *request.FarmType
		}
		if request.Status != nil {
			farm.Status = *request.Status
		}
		return tx.Save(farm).Error
	})
	if err != nil {
		if apiErr := asApiError(err); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
			return
		}
		api.handleWriteError(c, err, c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, farm)
}

// DeleteFarm removes a farm. When the cascade-delete feature flag is on
// every descendant record goes with it; otherwise child rows are left
// in place and become unreachable through the gate.
// DELETE /api/farms/:id
func (api *API) DeleteFarm(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "DeleteFarm")
	defer span.End()

	id, ok := uintParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("id"))
		return
	}

	cascade := api.cascadeDelete()
	var farm *models.Farm
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		var apiErr *ApiResponseError
		farm, apiErr = api.authorizedFarm(c, tx, id, gateWrite)
		if apiErr != nil {
			return apiErr
		}
		if cascade {
			if err := deleteFarmDescendants(tx, farm.ID); err != nil {
				return err
			}
		}
		return tx.Delete(&models.Farm{}, farm.ID).Error
	})
	if err != nil {
		if apiErr := asApiError(err); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
			return
		}
		api.handleWriteError(c, err, c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, farm)
}

// deleteFarmDescendants removes every record rooted at the farm, leaves
// first so no pass can orphan a row another pass still needs.
func deleteFarmDescendants(tx *gorm.DB, farmID uint) error {
	var fieldIDs []uint
	if err := tx.Model(&models.Field{}).Where("farm_id = ?", farmID).Pluck("id", &fieldIDs).Error; err != nil {
		return err
	}
	var deviceIDs []uint
	deviceWhere := tx.Where("farm_id = ?", farmID)
	if len(fieldIDs) > 0 {
		deviceWhere = deviceWhere.Or("field_id IN ?", fieldIDs)
	}
	if err := tx.Model(&models.Device{}).Where(deviceWhere).Pluck("id", &deviceIDs).Error; err != nil {
		return err
	}

	if len(deviceIDs) > 0 {
		if err := tx.Where("device_id IN ?", deviceIDs).Delete(&models.SensorReading{}).Error; err != nil {
			return err
		}
	}
	if len(fieldIDs) > 0 {
		if err := tx.Where("field_id IN ?", fieldIDs).Delete(&models.SensorReading{}).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{
			&models.IrrigationEvent{}, &models.FertilizationEvent{}, &models.HarvestRecord{},
		} {
			if err := tx.Where("field_id IN ?", fieldIDs).Delete(model).Error; err != nil {
				return err
			}
		}
	}
	for _, model := range []interface{}{
		&models.WeatherSample{}, &models.Alert{}, &models.Recommendation{}, &models.Report{},
	} {
		if err := tx.Where("farm_id = ?", farmID).Delete(model).Error; err != nil {
			return err
		}
	}
	if len(deviceIDs) > 0 {
		if err := tx.Delete(&models.Device{}, deviceIDs).Error; err != nil {
			return err
		}
	}
	return tx.Where("farm_id = ?", farmID).Delete(&models.Field{}).Error
}
