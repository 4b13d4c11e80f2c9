package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agrihub-io/agrihub/internal/models"
)

func (suite *HandlerTestSuite) TestCreateWeatherSampleAndLatest() {
	assert := suite.Assert()
	require := suite.Require()

	farm := suite.createFarm(testUserA, "home", 10000)

	base := time.Now().Add(-2 * time.Hour).UTC().Truncate(time.Second)
	for i, temperature := range []int{255, 248, 261} {
		at := base.Add(time.Duration(i) * time.Hour)
		temp := temperature
		_, res, err := suite.ServeRequest(
			testUserA, http.MethodPost, "/", "/",
			suite.api.CreateWeatherSample,
			suite.jsonBody(models.AddWeatherSample{
				FarmID:      farm.ID,
				Timestamp:   &at,
				Temperature: &temp,
				Source:      "sensor",
			}),
		)
		require.NoError(err)
		require.Equal(http.StatusCreated, res.Code)
	}

	_, res, err := suite.ServeRequest(
		testUserA, http.MethodGet, "/:id/weather/latest", fmt.Sprintf("/%d/weather/latest", farm.ID),
		suite.api.GetFarmWeatherLatest, nil,
	)
	require.NoError(err)
	body, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code, string(body))

	var latest models.WeatherSample
	require.NoError(json.Unmarshal(body, &latest))
	require.NotNil(latest.Temperature)
	assert.Equal(261, *latest.Temperature)
}

func (suite *HandlerTestSuite) TestWeatherValidationAndOwnership() {
	assert := suite.Assert()
	require := suite.Require()

	farm := suite.createFarm(testUserA, "home", 10000)

	humidity := 150
	_, res, err := suite.ServeRequest(
		testUserA, http.MethodPost, "/", "/",
		suite.api.CreateWeatherSample,
		suite.jsonBody(models.AddWeatherSample{FarmID: farm.ID, Humidity: &humidity}),
	)
	require.NoError(err)
	assert.Equal(http.StatusBadRequest, res.Code)

	_, res, err = suite.ServeRequest(
		testUserB, http.MethodPost, "/", "/",
		suite.api.CreateWeatherSample,
		suite.jsonBody(models.AddWeatherSample{FarmID: farm.ID}),
	)
	require.NoError(err)
	assert.Equal(http.StatusForbidden, res.Code)

	// No samples yet reads as absent, not as an error.
	empty := suite.createFarm(testUserA, "empty", 100)
	_, res, err = suite.ServeRequest(
		testUserA, http.MethodGet, "/:id/weather/latest", fmt.Sprintf("/%d/weather/latest", empty.ID),
		suite.api.GetFarmWeatherLatest, nil,
	)
	require.NoError(err)
	assert.Equal(http.StatusNotFound, res.Code)
}
