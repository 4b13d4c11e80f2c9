package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/agrihub-io/agrihub/internal/models"
)

const (
	defaultReadingLimit = 100
	maxReadingLimit     = 1000
)

// timeRangeQuery narrows telemetry reads. Timestamps are RFC 3339.
type timeRangeQuery struct {
	Since string `form:"since"`
	Until string `form:"until"`
	Limit int    `form:"limit"`
}

func (q *timeRangeQuery) apply(db *gorm.DB, column string) (*gorm.DB, *models.ValidationError) {
	if q.Since != "" {
		since, err := time.Parse(time.RFC3339, q.Since)
		if err != nil {
			fieldErr := models.NewFieldValidationError("since", "must be an RFC 3339 timestamp")
			return nil, &fieldErr
		}
		db = db.Where(column+" >= ?", since)
	}
	if q.Until != "" {
		until, err := time.Parse(time.RFC3339, q.Until)
		if err != nil {
			fieldErr := models.NewFieldValidationError("until", "must be an RFC 3339 timestamp")
			return nil, &fieldErr
		}
		db = db.Where(column+" <= ?", until)
	}
	return db, nil
}

func (q *timeRangeQuery) limit() int {
	if q.Limit <= 0 {
		return defaultReadingLimit
	}
	if q.Limit > maxReadingLimit {
		return maxReadingLimit
	}
	return q.Limit
}

// CreateSensorReading appends a reading reported by a device and
// refreshes the device's last_reading marker. Readings are immutable
// once stored.
// POST /api/readings
func (api *API) CreateSensorReading(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "CreateSensorReading")
	defer span.End()

	var request models.AddSensorReading
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}
	if fieldErr := request.Validate(); fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}
	span.SetAttributes(attribute.String("reading_type", request.ReadingType))

	timestamp := time.Now()
	if request.Timestamp != nil {
		timestamp = *request.Timestamp
	}

	var reading models.SensorReading
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		device, apiErr := api.authorizedDevice(c, tx, request.DeviceID, gateWrite)
		if apiErr != nil {
			return apiErr
		}
		if request.FieldID != nil {
			if _, apiErr := api.authorizedField(c, tx, *request.FieldID, gateWrite); apiErr != nil {
				return apiErr
			}
		}

		reading = models.SensorReading{
			DeviceID:    device.ID,
			FieldID:     request.FieldID,
			ReadingType: request.ReadingType,
			Value:       request.Value,
			Unit:        request.Unit,
			Timestamp:   timestamp,
		}
		if err := tx.Create(&reading).Error; err != nil {
			return err
		}
		return tx.Model(device).Update("last_reading", timestamp).Error
	})
	if err != nil {
		if apiErr := asApiError(err); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
			return
		}
		api.handleWriteError(c, err, request.ReadingType)
		return
	}
	c.JSON(http.StatusCreated, reading)
}

// ListDeviceReadings lists recent readings for one device, newest
// first.
// GET /api/devices/:id/readings
func (api *API) ListDeviceReadings(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListDeviceReadings")
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

	device, apiErr := api.authorizedDevice(c, api.db_(ctx), id, gateRead)
	if apiErr != nil {
		c.JSON(apiErr.Status, apiErr.Body)
		return
	}

	db := api.db_(ctx).Where("device_id = ?", device.ID)
	db, fieldErr := query.apply(db, "timestamp")
	if fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}
	if readingType := c.Query("reading_type"); readingType != "" {
		db = db.Where("reading_type = ?", readingType)
	}

	readings := make([]models.SensorReading, 0)
	res := db.Order("timestamp DESC").Limit(query.limit()).Find(&readings)
	if res.Error != nil {
		if !api.handleListError(c, res.Error) {
			return
		}
		readings = make([]models.SensorReading, 0)
	}
	c.JSON(http.StatusOK, readings)
}

// ListFieldReadings lists readings recorded against one field, newest
// first.
// GET /api/fields/:id/readings
func (api *API) ListFieldReadings(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListFieldReadings")
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
	db, fieldErr := query.apply(db, "timestamp")
	if fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}
	if readingType := c.Query("reading_type"); readingType != "" {
		db = db.Where("reading_type = ?", readingType)
	}

	readings := make([]models.SensorReading, 0)
	res := db.Order("timestamp DESC").Limit(query.limit()).Find(&readings)
	if res.Error != nil {
		if !api.handleListError(c, res.Error) {
			return
		}
		readings = make([]models.SensorReading, 0)
	}
	c.JSON(http.StatusOK, readings)
}
