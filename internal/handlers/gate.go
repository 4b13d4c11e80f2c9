package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agrihub-io/agrihub/internal/database"
	"github.com/agrihub-io/agrihub/internal/models"
)

// The ownership gate. Every farm-rooted record is reachable only by the
// owner of its farm or by an admin. Existence is always checked before
// ownership so a caller probing someone else's ids sees the same 404 as
// for ids that never existed only when the record is truly absent, and
// a 403 when it exists but belongs to someone else.

type gateOp int

const (
	gateRead gateOp = iota
	gateWrite
)

// gateError maps a failed gate fetch. Reads may degrade an unreachable
// store to absence, mutations never do.
func (api *API) gateError(c *gin.Context, err error, resource string, op gateOp) *ApiResponseError {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NewApiResponseError(http.StatusNotFound, models.NewNotFoundError(resource))
	case database.IsUnavailableError(err):
		if op == gateRead && api.degradedReads() {
			api.Logger(c.Request.Context()).Warnw("store unavailable, serving degraded read", "error", err)
			return NewApiResponseError(http.StatusNotFound, models.NewNotFoundError(resource))
		}
		return NewApiResponseError(http.StatusServiceUnavailable, models.NewUnavailableError())
	default:
		return api.internalError(c.Request.Context(), err)
	}
}

// authorizedFarm fetches the farm and checks that the current user owns
// it or is an admin. db may be a transaction so check-then-mutate
// sequences see a consistent record.
func (api *API) authorizedFarm(c *gin.Context, db *gorm.DB, farmID uint, op gateOp) (*models.Farm, *ApiResponseError) {
	var farm models.Farm
	if res := db.First(&farm, farmID); res.Error != nil {
		return nil, api.gateError(c, res.Error, "farm", op)
	}

	user := api.CurrentUser(c)
	if farm.OwnerID != user.ID && !user.IsAdmin() {
		return nil, NewApiResponseError(http.StatusForbidden, models.NewNotAllowedError("farm not owned by caller"))
	}
	return &farm, nil
}

// authorizedField fetches the field and authorizes through its farm. A
// field whose farm row is gone cannot establish ownership and reads as
// absent.
func (api *API) authorizedField(c *gin.Context, db *gorm.DB, fieldID uint, op gateOp) (*models.Field, *ApiResponseError) {
	var field models.Field
	if res := db.First(&field, fieldID); res.Error != nil {
		return nil, api.gateError(c, res.Error, "field", op)
	}
	if _, apiErr := api.authorizedFarm(c, db, field.FarmID, op); apiErr != nil {
		return nil, apiErr
	}
	return &field, nil
}

// authorizedDevice fetches the device and authorizes through its
// attachment. Devices attached to a field authorize through the field's
// farm, devices attached directly to a farm through that farm, and
// unattached devices are admin-only.
func (api *API) authorizedDevice(c *gin.Context, db *gorm.DB, deviceID uint, op gateOp) (*models.Device, *ApiResponseError) {
	var device models.Device
	if res := db.First(&device, deviceID); res.Error != nil {
		return nil, api.gateError(c, res.Error, "device", op)
	}

	switch {
	case device.FieldID != nil:
		if _, apiErr := api.authorizedField(c, db, *device.FieldID, op); apiErr != nil {
			return nil, apiErr
		}
	case device.FarmID != nil:
		if _, apiErr := api.authorizedFarm(c, db, *device.FarmID, op); apiErr != nil {
			return nil, apiErr
		}
	default:
		if !api.CurrentUser(c).IsAdmin() {
			return nil, NewApiResponseError(http.StatusForbidden, models.NewNotAllowedError("device is not attached to a farm"))
		}
	}
	return &device, nil
}

// authorizeAttachment checks ownership of the farm and field a new
// record wants to reference. Either pointer may be nil. When both are
// named the field must belong to that farm; owning two farms does not
// make a cross-farm attachment coherent.
func (api *API) authorizeAttachment(c *gin.Context, db *gorm.DB, farmID *uint, fieldID *uint, op gateOp) *ApiResponseError {
	var field *models.Field
	if fieldID != nil {
		f, apiErr := api.authorizedField(c, db, *fieldID, op)
		if apiErr != nil {
			return apiErr
		}
		field = f
	}
	if farmID != nil {
		if _, apiErr := api.authorizedFarm(c, db, *farmID, op); apiErr != nil {
			return apiErr
		}
		if field != nil && field.FarmID != *farmID {
			return NewApiResponseError(http.StatusBadRequest,
				models.NewFieldValidationError("field_id", "field does not belong to the named farm"))
		}
	}
	return nil
}

// authorizeOwnedRecord gates records keyed directly to a user, such as
// alerts and recommendations.
func (api *API) authorizeOwnedRecord(c *gin.Context, userID uint) *ApiResponseError {
	user := api.CurrentUser(c)
	if userID != user.ID && !user.IsAdmin() {
		return NewApiResponseError(http.StatusForbidden, models.NewNotAllowedError("record not owned by caller"))
	}
	return nil
}
