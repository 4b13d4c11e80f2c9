package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/agrihub-io/agrihub/internal/models"
)

func (suite *HandlerTestSuite) TestListFarmsIsScopedToOwner() {
	assert := suite.Assert()
	require := suite.Require()

	suite.createFarm(testUserA, "farm-a1", 1000)
	suite.createFarm(testUserA, "farm-a2", 2000)
	suite.createFarm(testUserB, "farm-b1", 3000)

	{
		_, res, err := suite.ServeRequest(
			testUserA, http.MethodGet, "/", "/",
			suite.api.ListFarms, nil,
		)
		require.NoError(err)
		body, err := io.ReadAll(res.Body)
		require.NoError(err)
		require.Equal(http.StatusOK, res.Code, string(body))

		var farms []models.Farm
		require.NoError(json.Unmarshal(body, &farms))
		assert.Len(farms, 2)
		for _, farm := range farms {
			assert.NotEqual("farm-b1", farm.Name)
		}
	}

	// Admins see the whole estate.
	{
		_, res, err := suite.ServeRequest(
			testAdmin, http.MethodGet, "/", "/",
			suite.api.ListFarms, nil,
		)
		require.NoError(err)
		body, err := io.ReadAll(res.Body)
		require.NoError(err)
		require.Equal(http.StatusOK, res.Code, string(body))

		var farms []models.Farm
		require.NoError(json.Unmarshal(body, &farms))
		assert.Len(farms, 3)
	}
}

func (suite *HandlerTestSuite) TestGetFarmEnforcesOwnership() {
	assert := suite.Assert()
	require := suite.Require()

	farm := suite.createFarm(testUserA, "orchard", 5000)

	// Owner reads it back.
	{
		_, res, err := suite.ServeRequest(
			testUserA, http.MethodGet, "/:id", fmt.Sprintf("/%d", farm.ID),
			suite.api.GetFarm, nil,
		)
		require.NoError(err)
		assert.Equal(http.StatusOK, res.Code)
	}

	// A different user gets a 403: the farm exists but is not theirs.
	{
		_, res, err := suite.ServeRequest(
			testUserB, http.MethodGet, "/:id", fmt.Sprintf("/%d", farm.ID),
			suite.api.GetFarm, nil,
		)
		require.NoError(err)
		assert.Equal(http.StatusForbidden, res.Code)
	}

	// A farm that never existed is a 404 for everyone.
	{
		_, res, err := suite.ServeRequest(
			testUserB, http.MethodGet, "/:id", "/99999",
			suite.api.GetFarm, nil,
		)
		require.NoError(err)
		assert.Equal(http.StatusNotFound, res.Code)
	}

	// Admins read anything.
	{
		_, res, err := suite.ServeRequest(
			testAdmin, http.MethodGet, "/:id", fmt.Sprintf("/%d", farm.ID),
			suite.api.GetFarm, nil,
		)
		require.NoError(err)
		assert.Equal(http.StatusOK, res.Code)
	}
}

func (suite *HandlerTestSuite) TestCreateFarmValidation() {
	assert := suite.Assert()
	require := suite.Require()

	cases := []models.AddFarm{
		{TotalArea: 100},                                       // missing name
		{Name: "x", TotalArea: 0},                              // bad area
		{Name: "x", TotalArea: 100, FarmType: "asteroid-mine"}, // bad enum
	}
	for _, payload := range cases {
		_, res, err := suite.ServeRequest(
			testUserA, http.MethodPost, "/", "/",
			suite.api.CreateFarm, suite.jsonBody(payload),
		)
		require.NoError(err)
		assert.Equal(http.StatusBadRequest, res.Code)
	}

	var count int64
	suite.api.db.Model(&models.Farm{}).Count(&count)
	assert.Equal(int64(0), count, "rejected payloads must not persist")
}

func (suite *HandlerTestSuite) TestUpdateFarm() {
	assert := suite.Assert()
	require := suite.Require()

	farm := suite.createFarm(testUserA, "old name", 1000)

	newName := "new name"
	status := "maintenance"
	_, res, err := suite.ServeRequest(
		testUserA, http.MethodPatch, "/:id", fmt.Sprintf("/%d", farm.ID),
		suite.api.UpdateFarm,
		suite.jsonBody(models.UpdateFarm{Name: &newName, Status: &status}),
	)
	require.NoError(err)
	body, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code, string(body))

	var updated models.Farm
	require.NoError(json.Unmarshal(body, &updated))
	assert.Equal("new name", updated.Name)
	assert.Equal("maintenance", updated.Status)
	assert.Equal(1000, updated.TotalArea, "unset fields keep their values")

	// Another user cannot patch it.
	_, res, err = suite.ServeRequest(
		testUserB, http.MethodPatch, "/:id", fmt.Sprintf("/%d", farm.ID),
		suite.api.UpdateFarm,
		suite.jsonBody(models.UpdateFarm{Name: &newName}),
	)
	require.NoError(err)
	assert.Equal(http.StatusForbidden, res.Code)
}

func (suite *HandlerTestSuite) TestDeleteFarmKeepsChildRows() {
	assert := suite.Assert()
	require := suite.Require()

	farm := suite.createFarm(testUserA, "doomed", 1000)
	field := suite.createField(testUserA, farm.ID, "plot", 500)

	_, res, err := suite.ServeRequest(
		testUserA, http.MethodDelete, "/:id", fmt.Sprintf("/%d", farm.ID),
		suite.api.DeleteFarm, nil,
	)
	require.NoError(err)
	assert.Equal(http.StatusOK, res.Code)

	// With the cascade flag off the field row survives, but it can no
	// longer be reached because its ownership chain is broken.
	var count int64
	suite.api.db.Model(&models.Field{}).Where("id = ?", field.ID).Count(&count)
	assert.Equal(int64(1), count)

	_, res, err = suite.ServeRequest(
		testUserA, http.MethodGet, "/:id", fmt.Sprintf("/%d", field.ID),
		suite.api.GetField, nil,
	)
	require.NoError(err)
	assert.Equal(http.StatusNotFound, res.Code)
}

func (suite *HandlerTestSuite) TestDeleteFarmCascade() {
	assert := suite.Assert()
	require := suite.Require()
	suite.T().Setenv("AGRIHUB_FFLAG_CASCADE_DELETE", "true")

	farm := suite.createFarm(testUserA, "doomed", 1000)
	field := suite.createField(testUserA, farm.ID, "plot", 500)
	device := suite.createDevice(testUserA, models.AddDevice{
		FieldID:    &field.ID,
		DeviceType: "soil_moisture",
	})

	_, res, err := suite.ServeRequest(
		testUserA, http.MethodDelete, "/:id", fmt.Sprintf("/%d", farm.ID),
		suite.api.DeleteFarm, nil,
	)
	require.NoError(err)
	assert.Equal(http.StatusOK, res.Code)

	var fields, devices int64
	suite.api.db.Model(&models.Field{}).Where("id = ?", field.ID).Count(&fields)
	suite.api.db.Model(&models.Device{}).Where("id = ?", device.ID).Count(&devices)
	assert.Equal(int64(0), fields)
	assert.Equal(int64(0), devices)
}
