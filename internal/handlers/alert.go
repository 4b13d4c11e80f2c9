package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agrihub-io/agrihub/internal/models"
)

// ListAlerts lists the caller's alerts, newest first. unread_only=true
// narrows to alerts not yet marked read, and expired alerts are always
// dropped.
// GET /api/alerts
func (api *API) ListAlerts(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListAlerts")
	defer span.End()

	user := api.CurrentUser(c)
	db := api.db_(ctx).Where("user_id = ?", user.ID)
	if c.Query("unread_only") == "true" {
		db = db.Where("is_read = ?", false)
	}
	db = db.Where("expires_at IS NULL OR expires_at > ?", time.Now())

	alerts := make([]models.Alert, 0)
	res := db.Scopes(FilterAndPaginate(&models.Alert{}, c, "id desc")).Find(&alerts)
	if res.Error != nil {
		if !api.handleListError(c, res.Error) {
			return
		}
		alerts = make([]models.Alert, 0)
	}
	c.JSON(http.StatusOK, alerts)
}

// CreateAlert raises an alert for the caller. A farm or field reference
// must belong to the caller.
// POST /api/alerts
func (api *API) CreateAlert(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "CreateAlert")
	defer span.End()

	var request models.AddAlert
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}
	if fieldErr := request.Validate(); fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}

	user := api.CurrentUser(c)
	var alert models.Alert
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		if apiErr := api.authorizeAttachment(c, tx, request.FarmID, request.FieldID, gateWrite); apiErr != nil {
			return apiErr
		}

		severity := request.Severity
		if severity == "" {
			severity = "info"
		}
		alert = models.Alert{
			UserID:         user.ID,
			FarmID:         request.FarmID,
			FieldID:        request.FieldID,
			AlertType:      request.AlertType,
			Severity:       severity,
			Title:          request.Title,
			Message:        request.Message,
			ActionRequired: request.ActionRequired,
			ExpiresAt:      request.ExpiresAt,
		}
		return tx.Create(&alert).Error
	})
	if err != nil {
		if apiErr := asApiError(err); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
			return
		}
		api.handleWriteError(c, err, request.Title)
		return
	}
	c.JSON(http.StatusCreated, alert)
}

// MarkAlertRead flips an alert to read. Marking twice is a no-op.
// PATCH /api/alerts/:id/read
func (api *API) MarkAlertRead(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "MarkAlertRead")
	defer span.End()

	id, ok := uintParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("id"))
		return
	}

	var alert models.Alert
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		if res := tx.First(&alert, id); res.Error != nil {
			return api.gateError(c, res.Error, "alert", gateWrite)
		}
		if apiErr := api.authorizeOwnedRecord(c, alert.UserID); apiErr != nil {
			return apiErr
		}
		alert.IsRead = true
		return tx.Model(&alert).Update("is_read", true).Error
	})
	if err != nil {
		if apiErr := asApiError(err); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
			return
		}
		api.handleWriteError(c, err, c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, alert)
}

// DeleteAlert removes one of the caller's alerts.
// DELETE /api/alerts/:id
func (api *API) DeleteAlert(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "DeleteAlert")
	defer span.End()

	id, ok := uintParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("id"))
		return
	}

	var alert models.Alert
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		if res := tx.First(&alert, id); res.Error != nil {
			return api.gateError(c, res.Error, "alert", gateWrite)
		}
		if apiErr := api.authorizeOwnedRecord(c, alert.UserID); apiErr != nil {
			return apiErr
		}
		return tx.Delete(&models.Alert{}, alert.ID).Error
	})
	if err != nil {
		if apiErr := asApiError(err); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
			return
		}
		api.handleWriteError(c, err, c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, alert)
}
