package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/agrihub-io/agrihub/internal/models"
)

// ListRecommendations lists the caller's recommendations, newest first.
// A status query param narrows to one lifecycle state.
// GET /api/recommendations
func (api *API) ListRecommendations(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ListRecommendations")
	defer span.End()

	user := api.CurrentUser(c)
	db := api.db_(ctx).Where("user_id = ?", user.ID)
	if status := c.Query("status"); status != "" {
		db = db.Where("status = ?", status)
	}

	recommendations := make([]models.Recommendation, 0)
	res := db.Scopes(FilterAndPaginate(&models.Recommendation{}, c, "id desc")).Find(&recommendations)
	if res.Error != nil {
		if !api.handleListError(c, res.Error) {
			return
		}
		recommendations = make([]models.Recommendation, 0)
	}
	c.JSON(http.StatusOK, recommendations)
}

// CreateRecommendation records an advisory item for the caller. A farm
// or field reference must belong to the caller.
// POST /api/recommendations
func (api *API) CreateRecommendation(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "CreateRecommendation")
	defer span.End()

	var request models.AddRecommendation
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}
	if fieldErr := request.Validate(); fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}

	user := api.CurrentUser(c)
	var recommendation models.Recommendation
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		if apiErr := api.authorizeAttachment(c, tx, request.FarmID, request.FieldID, gateWrite); apiErr != nil {
			return apiErr
		}

		priority := request.Priority
		if priority == "" {
			priority = "medium"
		}
		recommendation = models.Recommendation{
			UserID:             user.ID,
			FarmID:             request.FarmID,
			FieldID:            request.FieldID,
			RecommendationType: request.RecommendationType,
			Title:              request.Title,
			Description:        request.Description,
			Priority:           priority,
			Status:             "pending",
			Confidence:         request.Confidence,
			ValidUntil:         request.ValidUntil,
		}
		return tx.Create(&recommendation).Error
	})
	if err != nil {
		if apiErr := asApiError(err); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
			return
		}
		api.handleWriteError(c, err, request.Title)
		return
	}
	c.JSON(http.StatusCreated, recommendation)
}

// UpdateRecommendationStatus moves a recommendation through its
// lifecycle. Completing one stamps applied_at.
// PATCH /api/recommendations/:id/status
func (api *API) UpdateRecommendationStatus(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "UpdateRecommendationStatus")
	defer span.End()

	id, ok := uintParam(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, models.NewBadPathParameterError("id"))
		return
	}

	var request models.UpdateRecommendationStatus
	if err := c.BindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, models.NewBadPayloadError())
		return
	}
	if fieldErr := request.Validate(); fieldErr != nil {
		c.JSON(http.StatusBadRequest, fieldErr)
		return
	}

	var recommendation models.Recommendation
	err := api.transaction(ctx, func(tx *gorm.DB) error {
		if res := tx.First(&recommendation, id); res.Error != nil {
			return api.gateError(c, res.Error, "recommendation", gateWrite)
		}
		if apiErr := api.authorizeOwnedRecord(c, recommendation.UserID); apiErr != nil {
			return apiErr
		}

		updates := map[string]interface{}{"status": request.Status}
		recommendation.Status = request.Status
		if request.Status == "completed" && recommendation.AppliedAt == nil {
			now := time.Now()
			recommendation.AppliedAt = &now
			updates["applied_at"] = now
		}
		return tx.Model(&recommendation).Updates(updates).Error
	})
	if err != nil {
		if apiErr := asApiError(err); apiErr != nil {
			c.JSON(apiErr.Status, apiErr.Body)
			return
		}
		api.handleWriteError(c, err, c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, recommendation)
}
