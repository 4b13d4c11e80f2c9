package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/agrihub-io/agrihub/internal/auth"
	"github.com/agrihub-io/agrihub/internal/models"
)

func (suite *HandlerTestSuite) getDashboard(identity auth.Identity) models.DashboardOverview {
	require := suite.Require()
	_, res, err := suite.ServeRequest(
		identity, http.MethodGet, "/", "/",
		suite.api.GetDashboard, nil,
	)
	require.NoError(err)
	body, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code, string(body))

	var overview models.DashboardOverview
	require.NoError(json.Unmarshal(body, &overview))
	return overview
}

func (suite *HandlerTestSuite) TestDashboardWithNoData() {
	assert := suite.Assert()

	overview := suite.getDashboard(testUserA)
	assert.Equal(0, overview.TotalFarms)
	assert.Equal(0, overview.TotalArea)
	assert.Equal(0, overview.UnreadAlerts)
	assert.Equal(0, overview.PendingRecommendations)
	assert.NotNil(overview.Farms)
	assert.Empty(overview.Farms)
}

func (suite *HandlerTestSuite) TestDashboardAggregates() {
	assert := suite.Assert()
	require := suite.Require()

	suite.createFarm(testUserA, "north", 10000)
	suite.createFarm(testUserA, "south", 15000)
	suite.createFarm(testUserB, "other", 99999)

	suite.createAlert(testUserA, "unread-1")
	read := suite.createAlert(testUserA, "read-1")
	suite.createAlert(testUserB, "not-mine")

	_, res, err := suite.ServeRequest(
		testUserA, http.MethodPatch, "/:id/read", fmt.Sprintf("/%d/read", read.ID),
		suite.api.MarkAlertRead, nil,
	)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code)

	suite.createRecommendation(testUserA, "pending-1")
	done := suite.createRecommendation(testUserA, "done-1")
	_, res, err = suite.ServeRequest(
		testUserA, http.MethodPatch, "/:id/status", fmt.Sprintf("/%d/status", done.ID),
		suite.api.UpdateRecommendationStatus,
		suite.jsonBody(models.UpdateRecommendationStatus{Status: "completed"}),
	)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code)

	overview := suite.getDashboard(testUserA)
	assert.Equal(2, overview.TotalFarms)
	assert.Equal(25000, overview.TotalArea)
	assert.Equal(1, overview.UnreadAlerts)
	assert.Equal(1, overview.PendingRecommendations)
	require.Len(overview.Farms, 2)
	assert.Equal("north", overview.Farms[0].Name)
}

func (suite *HandlerTestSuite) TestDashboardFarmListIsAPreview() {
	assert := suite.Assert()

	for i := 0; i < 7; i++ {
		suite.createFarm(testUserA, fmt.Sprintf("farm-%d", i), 1000)
	}

	overview := suite.getDashboard(testUserA)
	assert.Equal(7, overview.TotalFarms)
	assert.Equal(7000, overview.TotalArea)
	assert.Len(overview.Farms, 5)
}
