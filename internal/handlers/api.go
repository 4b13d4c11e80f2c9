// Package handlers implements the HTTP API. Every handler that touches
// farm-rooted data goes through the ownership gate in gate.go before it
// reads or mutates anything.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/agrihub-io/agrihub/internal/database"
	"github.com/agrihub-io/agrihub/internal/fflags"
	"github.com/agrihub-io/agrihub/internal/models"
	"github.com/agrihub-io/agrihub/internal/util"
)

const (
	// CachePeriod is sent on public catalog responses.
	CachePeriod = "public, max-age=300"
)

var tracer = otel.Tracer("github.com/agrihub-io/agrihub/internal/handlers")

type API struct {
	logger          *zap.SugaredLogger
	db              *gorm.DB
	fflags          *fflags.FFlags
	transaction     database.TransactionFunc
	ownerIdentityID string
}

func NewAPI(
	ctx context.Context,
	logger *zap.SugaredLogger,
	db *gorm.DB,
	fflags *fflags.FFlags,
	ownerIdentityID string,
) (*API, error) {

	transactionFunc, _, err := database.GetTransactionFunc(db)
	if err != nil {
		return nil, err
	}

	api := &API{
		logger:          logger,
		db:              db,
		fflags:          fflags,
		transaction:     transactionFunc,
		ownerIdentityID: ownerIdentityID,
	}

	return api, nil
}

func (api *API) Logger(ctx context.Context) *zap.SugaredLogger {
	return util.WithTrace(ctx, api.logger)
}

func (api *API) db_(ctx context.Context) *gorm.DB {
	return api.db.WithContext(ctx)
}

// internalError logs the failure and builds a generic 500 body so
// internal details do not leak to the caller. The trace id lets
// operators correlate the response with the server logs.
func (api *API) internalError(ctx context.Context, err error) *ApiResponseError {
	span := trace.SpanFromContext(ctx)
	errorId := span.SpanContext().TraceID().String()

	api.logger.Errorf("request failed error [%s]: %s", errorId, err)
	result := models.InternalServerError{
		BaseError: models.BaseError{Error: "internal server error"},
	}
	if span.SpanContext().HasTraceID() {
		result.TraceId = errorId
	}
	return NewApiResponseError(http.StatusInternalServerError, result)
}

func (api *API) sendInternalServerError(c *gin.Context, err error) {
	apiErr := api.internalError(c.Request.Context(), err)
	c.JSON(apiErr.Status, apiErr.Body)
}

// FlagCheck aborts the request with a 404 when the named feature flag
// is disabled.
func (api *API) FlagCheck(flag string) gin.HandlerFunc {
	return func(c *gin.Context) {
		enabled, err := api.fflags.GetFlag(flag)
		if err != nil {
			api.sendInternalServerError(c, err)
			c.Abort()
			return
		}
		if !enabled {
			c.AbortWithStatusJSON(http.StatusNotFound, models.NewNotFoundError(flag))
			return
		}
		c.Next()
	}
}

func (api *API) degradedReads() bool {
	enabled, err := api.fflags.GetFlag(fflags.DegradedReads)
	if err != nil {
		return false
	}
	return enabled
}

func (api *API) cascadeDelete() bool {
	enabled, err := api.fflags.GetFlag(fflags.CascadeDelete)
	if err != nil {
		return false
	}
	return enabled
}

// handleListError classifies a failed collection read. It returns true
// when the caller should render an empty collection instead of failing,
// which is the behavior when the store is unreachable and degraded
// reads are enabled.
func (api *API) handleListError(c *gin.Context, err error) bool {
	if database.IsUnavailableError(err) {
		if api.degradedReads() {
			api.Logger(c.Request.Context()).Warnw("store unavailable, serving degraded read", "error", err)
			return true
		}
		c.JSON(http.StatusServiceUnavailable, models.NewUnavailableError())
		return false
	}
	api.sendInternalServerError(c, err)
	return false
}

// classifyReadError maps a failed single-record read to a response.
// Under degraded reads an unreachable store reads as absent. A nil
// return means the 500 response was already written.
func (api *API) classifyReadError(c *gin.Context, err error, resource string) *ApiResponseError {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NewApiResponseError(http.StatusNotFound, models.NewNotFoundError(resource))
	case database.IsUnavailableError(err):
		if api.degradedReads() {
			api.Logger(c.Request.Context()).Warnw("store unavailable, serving degraded read", "error", err)
			return NewApiResponseError(http.StatusNotFound, models.NewNotFoundError(resource))
		}
		return NewApiResponseError(http.StatusServiceUnavailable, models.NewUnavailableError())
	default:
		api.sendInternalServerError(c, err)
		return nil
	}
}

// handleWriteError classifies a failed mutation. conflictID names the
// colliding resource when the failure is a duplicate key.
func (api *API) handleWriteError(c *gin.Context, err error, conflictID string) {
	switch {
	case database.IsDuplicateError(err):
		c.JSON(http.StatusConflict, models.NewConflictsError(conflictID))
	case database.IsUnavailableError(err):
		c.JSON(http.StatusServiceUnavailable, models.NewUnavailableError())
	default:
		api.sendInternalServerError(c, err)
	}
}
