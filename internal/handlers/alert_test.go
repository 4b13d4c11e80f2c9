package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/agrihub-io/agrihub/internal/auth"
	"github.com/agrihub-io/agrihub/internal/models"
)

func (suite *HandlerTestSuite) createAlert(identity auth.Identity, title string) models.Alert {
	require := suite.Require()
	_, res, err := suite.ServeRequest(
		identity, http.MethodPost, "/", "/",
		suite.api.CreateAlert,
		suite.jsonBody(models.AddAlert{
			AlertType: "irrigation",
			Severity:  "warning",
			Title:     title,
			Message:   "soil moisture below threshold",
		}),
	)
	require.NoError(err)
	body, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusCreated, res.Code, string(body))

	var alert models.Alert
	require.NoError(json.Unmarshal(body, &alert))
	return alert
}

func (suite *HandlerTestSuite) TestAlertsAreScopedToUser() {
	assert := suite.Assert()
	require := suite.Require()

	suite.createAlert(testUserA, "alert-a")
	suite.createAlert(testUserB, "alert-b")

	_, res, err := suite.ServeRequest(
		testUserA, http.MethodGet, "/", "/",
		suite.api.ListAlerts, nil,
	)
	require.NoError(err)
	body, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code, string(body))

	var alerts []models.Alert
	require.NoError(json.Unmarshal(body, &alerts))
	require.Len(alerts, 1)
	assert.Equal("alert-a", alerts[0].Title)
}

func (suite *HandlerTestSuite) TestUnreadOnlyFilter() {
	assert := suite.Assert()
	require := suite.Require()

	read := suite.createAlert(testUserA, "seen")
	suite.createAlert(testUserA, "unseen")

	_, res, err := suite.ServeRequest(
		testUserA, http.MethodPatch, "/:id/read", fmt.Sprintf("/%d/read", read.ID),
		suite.api.MarkAlertRead, nil,
	)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code)

	_, res, err = suite.ServeRequest(
		testUserA, http.MethodGet, "/", "/?unread_only=true",
		suite.api.ListAlerts, nil,
	)
	require.NoError(err)
	body, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code, string(body))

	var alerts []models.Alert
	require.NoError(json.Unmarshal(body, &alerts))
	require.Len(alerts, 1)
	assert.Equal("unseen", alerts[0].Title)

	// Marking an already read alert again is a no-op.
	_, res, err = suite.ServeRequest(
		testUserA, http.MethodPatch, "/:id/read", fmt.Sprintf("/%d/read", read.ID),
		suite.api.MarkAlertRead, nil,
	)
	require.NoError(err)
	assert.Equal(http.StatusOK, res.Code)
}

func (suite *HandlerTestSuite) TestAlertOwnershipOnMutation() {
	assert := suite.Assert()
	require := suite.Require()

	alert := suite.createAlert(testUserA, "private")

	_, res, err := suite.ServeRequest(
		testUserB, http.MethodPatch, "/:id/read", fmt.Sprintf("/%d/read", alert.ID),
		suite.api.MarkAlertRead, nil,
	)
	require.NoError(err)
	assert.Equal(http.StatusForbidden, res.Code)

	_, res, err = suite.ServeRequest(
		testUserB, http.MethodDelete, "/:id", fmt.Sprintf("/%d", alert.ID),
		suite.api.DeleteAlert, nil,
	)
	require.NoError(err)
	assert.Equal(http.StatusForbidden, res.Code)

	// The owner can delete it.
	_, res, err = suite.ServeRequest(
		testUserA, http.MethodDelete, "/:id", fmt.Sprintf("/%d", alert.ID),
		suite.api.DeleteAlert, nil,
	)
	require.NoError(err)
	assert.Equal(http.StatusOK, res.Code)
}

func (suite *HandlerTestSuite) TestCreateAlertRejectsForeignFarm() {
	assert := suite.Assert()
	require := suite.Require()

	farm := suite.createFarm(testUserA, "home", 10000)

	_, res, err := suite.ServeRequest(
		testUserB, http.MethodPost, "/", "/",
		suite.api.CreateAlert,
		suite.jsonBody(models.AddAlert{
			FarmID:    &farm.ID,
			AlertType: "weather",
			Title:     "frost warning",
			Message:   "temperature dropping",
		}),
	)
	require.NoError(err)
	assert.Equal(http.StatusForbidden, res.Code)
}
