package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/agrihub-io/agrihub/internal/auth"
	"github.com/agrihub-io/agrihub/internal/models"
)

func (suite *HandlerTestSuite) createRecommendation(identity auth.Identity, title string) models.Recommendation {
	require := suite.Require()
	_, res, err := suite.ServeRequest(
		identity, http.MethodPost, "/", "/",
		suite.api.CreateRecommendation,
		suite.jsonBody(models.AddRecommendation{
			RecommendationType: "irrigation",
			Title:              title,
			Description:        "increase watering frequency while the heat wave lasts",
		}),
	)
	require.NoError(err)
	body, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusCreated, res.Code, string(body))

	var rec models.Recommendation
	require.NoError(json.Unmarshal(body, &rec))
	return rec
}

func (suite *HandlerTestSuite) TestCreateRecommendationDefaults() {
	assert := suite.Assert()

	rec := suite.createRecommendation(testUserA, "water more")
	assert.Equal("pending", rec.Status)
	assert.Equal("medium", rec.Priority)
	assert.Nil(rec.AppliedAt)
}

func (suite *HandlerTestSuite) TestRecommendationStatusTransitions() {
	assert := suite.Assert()
	require := suite.Require()

	rec := suite.createRecommendation(testUserA, "water more")

	_, res, err := suite.ServeRequest(
		testUserA, http.MethodPatch, "/:id/status", fmt.Sprintf("/%d/status", rec.ID),
		suite.api.UpdateRecommendationStatus,
		suite.jsonBody(models.UpdateRecommendationStatus{Status: "completed"}),
	)
	require.NoError(err)
	body, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code, string(body))

	var updated models.Recommendation
	require.NoError(json.Unmarshal(body, &updated))
	assert.Equal("completed", updated.Status)
	require.NotNil(updated.AppliedAt, "completion stamps applied_at")
	stamped := *updated.AppliedAt

	// A second completion keeps the original stamp.
	_, res, err = suite.ServeRequest(
		testUserA, http.MethodPatch, "/:id/status", fmt.Sprintf("/%d/status", rec.ID),
		suite.api.UpdateRecommendationStatus,
		suite.jsonBody(models.UpdateRecommendationStatus{Status: "completed"}),
	)
	require.NoError(err)
	body, err = io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code, string(body))
	require.NoError(json.Unmarshal(body, &updated))
	require.NotNil(updated.AppliedAt)
	assert.Equal(stamped.UTC(), updated.AppliedAt.UTC())

	// Statuses outside the closed set are rejected.
	_, res, err = suite.ServeRequest(
		testUserA, http.MethodPatch, "/:id/status", fmt.Sprintf("/%d/status", rec.ID),
		suite.api.UpdateRecommendationStatus,
		suite.jsonBody(models.UpdateRecommendationStatus{Status: "maybe"}),
	)
	require.NoError(err)
	assert.Equal(http.StatusBadRequest, res.Code)

	// Other users cannot transition it.
	_, res, err = suite.ServeRequest(
		testUserB, http.MethodPatch, "/:id/status", fmt.Sprintf("/%d/status", rec.ID),
		suite.api.UpdateRecommendationStatus,
		suite.jsonBody(models.UpdateRecommendationStatus{Status: "rejected"}),
	)
	require.NoError(err)
	assert.Equal(http.StatusForbidden, res.Code)
}

func (suite *HandlerTestSuite) TestListRecommendationsStatusFilter() {
	assert := suite.Assert()
	require := suite.Require()

	suite.createRecommendation(testUserA, "first")
	accepted := suite.createRecommendation(testUserA, "second")
	suite.createRecommendation(testUserB, "not-mine")

	_, res, err := suite.ServeRequest(
		testUserA, http.MethodPatch, "/:id/status", fmt.Sprintf("/%d/status", accepted.ID),
		suite.api.UpdateRecommendationStatus,
		suite.jsonBody(models.UpdateRecommendationStatus{Status: "accepted"}),
	)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code)

	_, res, err = suite.ServeRequest(
		testUserA, http.MethodGet, "/", "/?status=pending",
		suite.api.ListRecommendations, nil,
	)
	require.NoError(err)
	body, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code, string(body))

	var recs []models.Recommendation
	require.NoError(json.Unmarshal(body, &recs))
	require.Len(recs, 1)
	assert.Equal("first", recs[0].Title)

	// Without a filter the other user's rows stay invisible.
	_, res, err = suite.ServeRequest(
		testUserA, http.MethodGet, "/", "/",
		suite.api.ListRecommendations, nil,
	)
	require.NoError(err)
	body, err = io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code, string(body))
	require.NoError(json.Unmarshal(body, &recs))
	assert.Len(recs, 2)
}
