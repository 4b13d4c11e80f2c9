package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"github.com/agrihub-io/agrihub/internal/auth"
	"github.com/agrihub-io/agrihub/internal/database"
	"github.com/agrihub-io/agrihub/internal/fflags"
	"github.com/agrihub-io/agrihub/internal/models"
)

// unavailableAPI builds an API over a lazy postgres handle pointing at
// a port nothing listens on, so every query surfaces a connection
// error.
func (suite *HandlerTestSuite) unavailableAPI() *API {
	require := suite.Require()

	db, _, err := database.NewDatabase(
		context.Background(), suite.logger,
		"127.0.0.1", "agrihub", "agrihub", "agrihub", "1", "disable", true,
	)
	require.NoError(err)

	flags := fflags.NewFFlags(suite.logger)
	flags.RegisterEnvFlag(fflags.CascadeDelete, "AGRIHUB_FFLAG_CASCADE_DELETE", false)
	flags.RegisterEnvFlag(fflags.DegradedReads, "AGRIHUB_FFLAG_DEGRADED_READS", true)

	api, err := NewAPI(context.Background(), suite.logger, db, flags, testAdmin.ID)
	require.NoError(err)
	return api
}

// serveDirect runs one handler on the given API without the identity
// chain, preseeding the stored user where the handler needs one.
func (suite *HandlerTestSuite) serveDirect(api *API, user *models.User, method, path, uri string, handler gin.HandlerFunc, body io.Reader) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if user != nil {
		r.Use(func(c *gin.Context) {
			c.Set(currentUserKey, user)
			c.Next()
		})
	}
	r.Any(path, handler)
	req, err := http.NewRequest(method, uri, body)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	return res
}

func (suite *HandlerTestSuite) TestUnreachableStoreDegradesCollectionReads() {
	assert := suite.Assert()
	require := suite.Require()

	api := suite.unavailableAPI()

	res := suite.serveDirect(api, nil, http.MethodGet, "/", "/", api.ListCrops, nil)
	body, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code, string(body))
	assert.JSONEq("[]", string(body))
}

func (suite *HandlerTestSuite) TestUnreachableStoreDegradesSingleReads() {
	assert := suite.Assert()

	api := suite.unavailableAPI()

	res := suite.serveDirect(api, nil, http.MethodGet, "/:id", "/1", api.GetCrop, nil)
	assert.Equal(http.StatusNotFound, res.Code)
}

func (suite *HandlerTestSuite) TestUnreachableStoreFailsReadsWithDegradationOff() {
	assert := suite.Assert()
	suite.T().Setenv("AGRIHUB_FFLAG_DEGRADED_READS", "false")

	api := suite.unavailableAPI()

	res := suite.serveDirect(api, nil, http.MethodGet, "/", "/", api.ListCrops, nil)
	assert.Equal(http.StatusServiceUnavailable, res.Code)

	res = suite.serveDirect(api, nil, http.MethodGet, "/:id", "/1", api.GetCrop, nil)
	assert.Equal(http.StatusServiceUnavailable, res.Code)
}

func (suite *HandlerTestSuite) TestUnreachableStoreNeverDegradesWrites() {
	assert := suite.Assert()

	api := suite.unavailableAPI()
	user := &models.User{Base: models.Base{ID: 1}}

	// Degraded reads stay enabled; the write must still fail loudly.
	res := suite.serveDirect(api, user, http.MethodPost, "/", "/",
		api.CreateSensorReading,
		suite.jsonBody(models.AddSensorReading{
			DeviceID:    1,
			ReadingType: "temperature",
			Value:       "21.5",
		}),
	)
	assert.Equal(http.StatusServiceUnavailable, res.Code)

	res = suite.serveDirect(api, user, http.MethodPost, "/", "/",
		api.CreateFarm,
		suite.jsonBody(models.AddFarm{Name: "doomed", TotalArea: 100}),
	)
	assert.Equal(http.StatusServiceUnavailable, res.Code)
}

func (suite *HandlerTestSuite) TestUnreachableStoreBlocksIdentityResolution() {
	assert := suite.Assert()
	require := suite.Require()

	api := suite.unavailableAPI()

	// The full protected chain: identity resolves but the user record
	// cannot be loaded, so the request never reaches the handler.
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(gin.AuthUserKey, testUserA.ID)
		c.Set(auth.IdentityKey, testUserA)
		c.Next()
	})
	r.Use(api.CreateUserIfNotExists())
	r.GET("/", api.GetCurrentUser)
	req, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(err)
	res := httptest.NewRecorder()
	r.ServeHTTP(res, req)
	assert.Equal(http.StatusServiceUnavailable, res.Code)
}
