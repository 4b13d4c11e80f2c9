package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/agrihub-io/agrihub/internal/models"
)

func (suite *HandlerTestSuite) TestCropCatalogWritesAreAdminOnly() {
	assert := suite.Assert()
	require := suite.Require()

	payload := models.AddCrop{
		Name:             "durum wheat",
		Category:         "cereal",
		WaterRequirement: "medium",
	}

	_, res, err := suite.ServeRequest(
		testUserA, http.MethodPost, "/", "/",
		suite.api.CreateCrop, suite.jsonBody(payload),
	)
	require.NoError(err)
	assert.Equal(http.StatusForbidden, res.Code)

	_, res, err = suite.ServeRequest(
		testAdmin, http.MethodPost, "/", "/",
		suite.api.CreateCrop, suite.jsonBody(payload),
	)
	require.NoError(err)
	body, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusCreated, res.Code, string(body))

	var crop models.Crop
	require.NoError(json.Unmarshal(body, &crop))
	assert.Equal("durum wheat", crop.Name)
}

func (suite *HandlerTestSuite) TestListCropsIsPublicAndFilters() {
	assert := suite.Assert()
	require := suite.Require()

	for _, crop := range []models.AddCrop{
		{Name: "durum wheat", Category: "cereal"},
		{Name: "barley", Category: "cereal"},
		{Name: "tomato", Category: "vegetable"},
	} {
		_, res, err := suite.ServeRequest(
			testAdmin, http.MethodPost, "/", "/",
			suite.api.CreateCrop, suite.jsonBody(crop),
		)
		require.NoError(err)
		require.Equal(http.StatusCreated, res.Code)
	}

	_, res, err := suite.ServeRequest(
		testUserB, http.MethodGet, "/", "/?category=cereal",
		suite.api.ListCrops, nil,
	)
	require.NoError(err)
	body, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code, string(body))
	assert.NotEmpty(res.Header().Get("Cache-Control"))

	var crops []models.Crop
	require.NoError(json.Unmarshal(body, &crops))
	assert.Len(crops, 2)
}

func (suite *HandlerTestSuite) TestGetCrop() {
	assert := suite.Assert()
	require := suite.Require()

	_, res, err := suite.ServeRequest(
		testAdmin, http.MethodPost, "/", "/",
		suite.api.CreateCrop, suite.jsonBody(models.AddCrop{Name: "olive"}),
	)
	require.NoError(err)
	body, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusCreated, res.Code, string(body))

	var crop models.Crop
	require.NoError(json.Unmarshal(body, &crop))

	_, res, err = suite.ServeRequest(
		testUserA, http.MethodGet, "/:id", fmt.Sprintf("/%d", crop.ID),
		suite.api.GetCrop, nil,
	)
	require.NoError(err)
	assert.Equal(http.StatusOK, res.Code)

	_, res, err = suite.ServeRequest(
		testUserA, http.MethodGet, "/:id", fmt.Sprintf("/%d", crop.ID+100),
		suite.api.GetCrop, nil,
	)
	require.NoError(err)
	assert.Equal(http.StatusNotFound, res.Code)
}

func (suite *HandlerTestSuite) TestMarketPrices() {
	assert := suite.Assert()
	require := suite.Require()

	// Only admins publish price observations.
	_, res, err := suite.ServeRequest(
		testUserA, http.MethodPost, "/", "/",
		suite.api.CreateMarketPrice,
		suite.jsonBody(models.AddMarketPrice{CropType: "durum wheat", Price: 235}),
	)
	require.NoError(err)
	assert.Equal(http.StatusForbidden, res.Code)

	base := time.Now().Add(-48 * time.Hour).UTC().Truncate(time.Second)
	for i, price := range []models.AddMarketPrice{
		{CropType: "durum wheat", Region: "north", Price: 235},
		{CropType: "durum wheat", Region: "south", Price: 228},
		{CropType: "barley", Region: "north", Price: 180},
	} {
		at := base.Add(time.Duration(i) * 24 * time.Hour)
		price.Date = &at
		_, res, err = suite.ServeRequest(
			testAdmin, http.MethodPost, "/", "/",
			suite.api.CreateMarketPrice, suite.jsonBody(price),
		)
		require.NoError(err)
		body, _ := io.ReadAll(res.Body)
		require.Equal(http.StatusCreated, res.Code, string(body))
	}

	_, res, err = suite.ServeRequest(
		testUserB, http.MethodGet, "/", "/?crop_type=durum+wheat&region=north",
		suite.api.ListMarketPrices, nil,
	)
	require.NoError(err)
	body, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code, string(body))

	var prices []models.MarketPrice
	require.NoError(json.Unmarshal(body, &prices))
	require.Len(prices, 1)
	assert.Equal(235, prices[0].Price)
	assert.Equal("USD", prices[0].Currency)

	// The per-crop listing spans regions.
	_, res, err = suite.ServeRequest(
		testUserB, http.MethodGet, "/crop/:cropType", "/crop/durum%20wheat",
		suite.api.ListMarketPricesByCrop, nil,
	)
	require.NoError(err)
	body, err = io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code, string(body))
	require.NoError(json.Unmarshal(body, &prices))
	require.Len(prices, 2)
	assert.True(prices[0].Date.After(prices[1].Date), "newest first")

	// A zero price never enters the series.
	_, res, err = suite.ServeRequest(
		testAdmin, http.MethodPost, "/", "/",
		suite.api.CreateMarketPrice,
		suite.jsonBody(models.AddMarketPrice{CropType: "barley"}),
	)
	require.NoError(err)
	assert.Equal(http.StatusBadRequest, res.Code)
}
