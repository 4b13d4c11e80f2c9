package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrihub-io/agrihub/internal/database"
	"github.com/agrihub-io/agrihub/internal/models"
)

const dashboardFarmPreview = 5

// GetDashboard aggregates the caller's farms, unread alerts and pending
// recommendations into one overview. The three queries are independent;
// under degraded reads a failing query contributes zeros instead of
// failing the whole response.
// GET /api/dashboard
func (api *API) GetDashboard(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "GetDashboard")
	defer span.End()

	user := api.CurrentUser(c)
	overview := models.DashboardOverview{
		Farms: make([]models.Farm, 0),
	}

	degraded := func(err error) bool {
		if database.IsUnavailableError(err) {
			if api.degradedReads() {
				api.Logger(ctx).Warnw("store unavailable, serving degraded dashboard", "error", err)
				return true
			}
			c.JSON(http.StatusServiceUnavailable, models.NewUnavailableError())
			return false
		}
		api.sendInternalServerError(c, err)
		return false
	}

	farms := make([]models.Farm, 0)
	if err := api.db_(ctx).Where("owner_id = ?", user.ID).Order("id").Find(&farms).Error; err != nil {
		if !degraded(err) {
			return
		}
		farms = make([]models.Farm, 0)
	}
	overview.TotalFarms = len(farms)
	for _, farm := range farms {
		overview.TotalArea += farm.TotalArea
	}
	// The embedded list is a preview; the totals cover everything.
	if len(farms) > dashboardFarmPreview {
		farms = farms[:dashboardFarmPreview]
	}
	overview.Farms = farms

	var unread int64
	if err := api.db_(ctx).Model(&models.Alert{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Count(&unread).Error; err != nil {
		if !degraded(err) {
			return
		}
		unread = 0
	}
	overview.UnreadAlerts = int(unread)

	var pending int64
	if err := api.db_(ctx).Model(&models.Recommendation{}).
		Where("user_id = ? AND status = ?", user.ID, "pending").
		Count(&pending).Error; err != nil {
		if !degraded(err) {
			return
		}
		pending = 0
	}
	overview.PendingRecommendations = int(pending)

	c.JSON(http.StatusOK, overview)
}
