package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agrihub-io/agrihub/internal/models"
)

// ListReports lists the caller's reports, newest first.
// GET /api/reports
func (api *API) ListReports(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListReports")
	defer span.End()

	user := api.CurrentUser(c)
	db := api.db_(ctx).Where("user_id = ?", user.ID)
	if reportType := c.Query("report_type"); reportType != "" {
		db = db.Where("report_type = ?", reportType)
	}

	reports := make([]models.Report, 0)
	res := db.Scopes(FilterAndPaginate(&models.Report{}, c, "id desc")).Find(&reports)
	if res.Error != nil {
		if !api.handleListError(c, res.Error) {
			return
		}
		reports = make([]models.Report, 0)
	}
	c.JSON(http.StatusOK, reports)
}

// CreateReport stores a generated report for the caller. A farm
// reference must belong to the caller.
// POST /api/reports
func (api *API) CreateReport(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "CreateReport")
	defer span.End()

	var request models.AddReport
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}
	if fieldErr := request.Validate(); fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}

	user := api.CurrentUser(c)
	var report models.Report
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		if apiErr := api.authorizeAttachment(c, tx, request.FarmID, nil, gateWrite); apiErr != nil {
			return apiErr
		}

		report = models.Report{
			UserID:     user.ID,
			FarmID:     request.FarmID,
			ReportType: request.ReportType,
			Title:      request.Title,
			Content:    request.Content,
			FileUrl:    request.FileUrl,
			StartDate:  request.StartDate,
			EndDate:    request.EndDate,
		}
		return tx.Create(&report).Error
	})
	if err != nil {
		if apiErr := asApiError(err); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
			return
		}
		api.handleWriteError(c, err, request.Title)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// GetReport renders one report.
// GET /api/reports/:id
func (api *API) GetReport(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "GetReport")
	defer span.End()

	id, ok := uintParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("id"))
		return
	}

	var report models.Report
	if res := api.db_(ctx).First(&report, id); res.Error != nil {
		if apiErr := api.classifyReadError(c, res.Error, "report"); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
		}
		return
	}
	if apiErr := api.authorizeOwnedRecord(c, report.UserID); apiErr != nil {
		c.JSON(apiErr.Status, apiErr.Body)
		return
	}
	c.JSON(http.StatusOK, report)
}

// DeleteReport removes one of the caller's reports.
// DELETE /api/reports/:id
func (api *API) DeleteReport(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "DeleteReport")
	defer span.End()

	id, ok := uintParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("id"))
		return
	}

	var report models.Report
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		if res := tx.First(&report, id); res.Error != nil {
			return api.gateError(c, res.Error, "report", gateWrite)
		}
		if apiErr := api.authorizeOwnedRecord(c, report.UserID); apiErr != nil {
			return apiErr
		}
		return tx.Delete(&models.Report{}, report.ID).Error
	})
	if err != nil {
		if apiErr := asApiError(err); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
			return
		}
		api.handleWriteError(c, err, c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, report)
}
