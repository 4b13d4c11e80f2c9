package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/agrihub-io/agrihub/internal/models"
)

// ListDevices lists the devices reachable through farms the caller
// owns. Admins see every device, including unattached ones.
// GET /api/devices
func (api *API) ListDevices(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListDevices")
	defer span.End()

	user := api.CurrentUser(c)
	db := api.db_(ctx)

	devices := make([]models.Device, 0)
	if !user.IsAdmin() {
		var farmIDs []uint
		if err := db.Model(&models.Farm{}).Where("owner_id = ?", user.ID).Pluck("id", &farmIDs).Error; err != nil {
			if !api.handleListError(c, err) {
				return
			}
			c.JSON(http.StatusOK, devices)
			return
		}
		if len(farmIDs) == 0 {
			c.JSON(http.StatusOK, devices)
			return
		}
		var fieldIDs []uint
		if err := db.Model(&models.Field{}).Where("farm_id IN ?", farmIDs).Pluck("id", &fieldIDs).Error; err != nil {
			if !api.handleListError(c, err) {
				return
			}
			c.JSON(http.StatusOK, devices)
			return
		}
		scope := db.Where("farm_id IN ?", farmIDs)
		if len(fieldIDs) > 0 {
			scope = scope.Or("field_id IN ?", fieldIDs)
		}
		db = api.db_(ctx).Where(scope)
	}

	res := db.Scopes(FilterAndPaginate(&models.Device{}, c, "id")).Find(&devices)
	if res.Error != nil {
		if !api.handleListError(c, res.Error) {
			return
		}
		devices = make([]models.Device, 0)
	}
	c.JSON(http.StatusOK, devices)
}

// ListFarmDevices lists the devices attached to one farm, directly or
// through its fields.
// GET /api/farms/:id/devices
func (api *API) ListFarmDevices(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListFarmDevices")
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

	devices := make([]models.Device, 0)
	var fieldIDs []uint
	if err := api.db_(ctx).Model(&models.Field{}).Where("farm_id = ?", farm.ID).Pluck("id", &fieldIDs).Error; err != nil {
		if !api.handleListError(c, err) {
			return
		}
		c.JSON(http.StatusOK, devices)
		return
	}
	scope := api.db_(ctx).Where("farm_id = ?", farm.ID)
	if len(fieldIDs) > 0 {
		scope = scope.Or("field_id IN ?", fieldIDs)
	}

	res := api.db_(ctx).Where(scope).Scopes(FilterAndPaginate(&models.Device{}, c, "id")).Find(&devices)
	if res.Error != nil {
		if !api.handleListError(c, res.Error) {
			return
		}
		devices = make([]models.Device, 0)
	}
	c.JSON(http.StatusOK, devices)
}

// ListFieldDevices lists the devices attached to one field.
// GET /api/fields/:id/devices
func (api *API) ListFieldDevices(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListFieldDevices")
	defer span.End()

	fieldID, ok := uintParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("id"))
		return
	}

	field, apiErr := api.authorizedField(c, api.db_(ctx), fieldID, gateRead)
	if apiErr != nil {
		c.JSON(apiErr.Status, apiErr.Body)
		return
	}

	devices := make([]models.Device, 0)
	res := api.db_(ctx).
		Where("field_id = ?", field.ID).
		Scopes(FilterAndPaginate(&models.Device{}, c, "id")).
		Find(&devices)
	if res.Error != nil {
		if !api.handleListError(c, res.Error) {
			return
		}
		devices = make([]models.Device, 0)
	}
	c.JSON(http.StatusOK, devices)
}

// CreateDevice registers a device on a farm or field the caller owns.
// The external device id must be unique across the fleet; a random one
// is generated when the payload does not carry one.
// POST /api/devices
func (api *API) CreateDevice(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "CreateDevice")
	defer span.End()

	var request models.AddDevice
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}
	if fieldErr := request.Validate(); fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}
	if request.DeviceID == "" {
		request.DeviceID = uuid.New().String()
	}
	span.SetAttributes(attribute.String("device_id", request.DeviceID))

	var device models.Device
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		if apiErr := api.authorizeAttachment(c, tx, request.FarmID, request.FieldID, gateWrite); apiErr != nil {
			return apiErr
		}
		device = models.Device{
			FarmID:       request.FarmID,
			FieldID:      request.FieldID,
			DeviceID:     request.DeviceID,
			DeviceType:   request.DeviceType,
			Manufacturer: request.Manufacturer,
			Model:        request.Model,
			Protocol:     request.Protocol,
			Location:     request.Location,
			Status:       "offline",
		}
		return tx.Create(&device).Error
	})
	if err != nil {
		if apiErr := asApiError(err); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
			return
		}
		api.handleWriteError(c, err, request.DeviceID)
		return
	}
	c.JSON(http.StatusCreated, device)
}

// GetDevice renders one device.
// GET /api/devices/:id
func (api *API) GetDevice(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "GetDevice")
	defer span.End()

	id, ok := uintParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("id"))
		return
	}

	device, apiErr := api.authorizedDevice(c, api.db_(ctx), id, gateRead)
	if apiErr != nil {
		c.JSON(apiErr.Status, apiErr.Body)
		return
	}
	c.JSON(http.StatusOK, device)
}

// UpdateDeviceStatus applies a status transition.
// PATCH /api/devices/:id/status
func (api *API) UpdateDeviceStatus(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "UpdateDeviceStatus")
	defer span.End()

	id, ok := uintParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("id"))
		return
	}

	var request models.UpdateDeviceStatus
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}
	if fieldErr := request.Validate(); fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}

	var device *models.Device
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		var apiErr *ApiResponseError
		device, apiErr = api.authorizedDevice(c, tx, id, gateWrite)
		if apiErr != nil {
			return apiErr
		}
		device.Status = request.Status
		return tx.Model(device).Update("status", device.Status).Error
	})
	if err != nil {
		if apiErr := asApiError(err); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
			return
		}
		api.handleWriteError(c, err, c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, device)
}

// DeviceHeartbeat refreshes the liveness data a device reports about
// itself and flips it online.
// POST /api/devices/:id/heartbeat
func (api *API) DeviceHeartbeat(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "DeviceHeartbeat")
	defer span.End()

	id, ok := uintParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("id"))
		return
	}

	var request models.DeviceHeartbeat
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}
	if fieldErr := request.Validate(); fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}

	var device *models.Device
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		var apiErr *ApiResponseError
		device, apiErr = api.authorizedDevice(c, tx, id, gateWrite)
		if apiErr != nil {
			return apiErr
		}

		updates := map[string]interface{}{"status": "online"}
		device.Status = "online"
		if request.BatteryLevel != nil {
			device.BatteryLevel = request.BatteryLevel
			updates["battery_level"] = *request.BatteryLevel
		}
		lastReading := time.Now()
		if request.LastReading != nil {
			lastReading = *request.LastReading
		}
		device.LastReading = &lastReading
		updates["last_reading"] = lastReading
		return tx.Model(device).Updates(updates).Error
	})
	if err != nil {
		if apiErr := asApiError(err); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
			return
		}
		api.handleWriteError(c, err, c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, device)
}

// DeleteDevice removes a device. The cascade-delete flag extends the
// delete to the device's readings.
// DELETE /api/devices/:id
func (api *API) DeleteDevice(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "DeleteDevice")
	defer span.End()

	id, ok := uintParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("id"))
		return
	}

	cascade := api.cascadeDelete()
	var device *models.Device
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		var apiErr *ApiResponseError
		device, apiErr = api.authorizedDevice(c, tx, id, gateWrite)
		if apiErr != nil {
			return apiErr
		}
		if cascade {
			if err := tx.Where("device_id = ?", device.ID).Delete(&models.SensorReading{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Device{}, device.ID).Error
	})
	if err != nil {
		if apiErr := asApiError(err); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
			return
		}
		api.handleWriteError(c, err, c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, device)
}
