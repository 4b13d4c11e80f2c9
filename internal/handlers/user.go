package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/agrihub-io/agrihub/internal/auth"
	"github.com/agrihub-io/agrihub/internal/database"
	"github.com/agrihub-io/agrihub/internal/models"
	"github.com/agrihub-io/agrihub/internal/util"
)

const currentUserKey = "agrihub.currentUser"

// CreateUserIfNotExists loads the stored user for the resolved identity,
// creating the record on first sight. Two concurrent first requests can
// race on the identity_id unique index, so the lookup is retried once
// on a duplicate key.
func (api *API) CreateUserIfNotExists() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := tracer.Start(c.Request.Context(), "CreateUserIfNotExists")
		defer span.End()

		value, ok := c.Get(auth.IdentityKey)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewNotAuthenticatedError())
			return
		}
		identity := value.(auth.Identity)
		span.SetAttributes(attribute.String("identity_id", identity.ID))

		user, err := api.createUserIfNotExists(ctx, identity)
		if err != nil {
			if database.IsUnavailableError(err) {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, models.NewUnavailableError())
				return
			}
			api.sendInternalServerError(c, err)
			c.Abort()
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

func (api *API) createUserIfNotExists(ctx context.Context, identity auth.Identity) (*models.User, error) {
	var user models.User
	err := util.RetryOperationForErrors(ctx, time.Millisecond*10, 1, []error{gorm.ErrDuplicatedKey}, func() error {
		return api.transaction(ctx, func(tx *gorm.DB) error {
			res := tx.Where("identity_id = ?", identity.ID).First(&user)
			if res.Error == nil {
				user.LastSignedIn = time.Now()
				return tx.Model(&user).Update("last_signed_in", user.LastSignedIn).Error
			}
			if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
				return res.Error
			}

			role := models.RoleUser
			if api.ownerIdentityID != "" && identity.ID == api.ownerIdentityID {
				role = models.RoleAdmin
			}
			user = models.User{
				IdentityID:   identity.ID,
				Name:         identity.Name,
				Email:        identity.Email,
				Role:         role,
				LastSignedIn: time.Now(),
			}
			return tx.Create(&user).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUser returns the stored user set by CreateUserIfNotExists.
func (api *API) CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	return value.(*models.User)
}

// GetCurrentUser renders the caller's own user record.
// GET /api/users/me
func (api *API) GetCurrentUser(c *gin.Context) {
	_, span := tracer.Start(c.Request.Context(), "GetCurrentUser")
	defer span.End()

	user := api.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, models.NewNotAuthenticatedError())
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers lists all user records. Admin only.
// GET /api/users
func (api *API) ListUsers(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListUsers")
	defer span.End()

	user := api.CurrentUser(c)
	if !user.IsAdmin() {
		c.JSON(http.StatusForbidden, models.NewNotAllowedError("admin role required"))
		return
	}

	users := make([]models.User, 0)
	res := api.db_(ctx).Scopes(FilterAndPaginate(&models.User{}, c, "id")).Find(&users)
	if res.Error != nil {
		if !api.handleListError(c, res.Error) {
			return
		}
		users = make([]models.User, 0)
	}
	c.JSON(http.StatusOK, users)
}

// GetUser renders one user record. Admins can read anyone, everyone
// else only themselves.
// GET /api/users/:id
func (api *API) GetUser(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "GetUser")
	defer span.End()

	id, ok := uintParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("id"))
		return
	}

	user := api.CurrentUser(c)
	if !user.IsAdmin() && user.ID != id {
		c.JSON(http.StatusForbidden, models.NewNotAllowedError("not your user record"))
		return
	}
	if user.ID == id {
		c.JSON(http.StatusOK, user)
		return
	}

	var target models.User
	if res := api.db_(ctx).First(&target, id); res.Error != nil {
		if apiErr := api.classifyReadError(c, res.Error, "user"); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
		}
		return
	}
	c.JSON(http.StatusOK, target)
}

// UpdateUserRole changes a user's role. Admin only.
// PATCH /api/users/:id/role
func (api *API) UpdateUserRole(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "UpdateUserRole")
	defer span.End()

	id, ok := uintParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("id"))
		return
	}

	var request models.UpdateUserRole
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

	var target models.User
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		if res := tx.First(&target, id); res.Error != nil {
			return res.Error
		}
		target.Role = request.Role
		return tx.Model(&target).Update("role", target.Role).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, models.NewNotFoundError("user"))
			return
		}
		api.handleWriteError(c, err, c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, target)
}
