package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/agrihub-io/agrihub/internal/auth"
	"github.com/agrihub-io/agrihub/internal/models"
)

func (suite *HandlerTestSuite) currentUser(identity auth.Identity) models.User {
	require := suite.Require()
	_, res, err := suite.ServeRequest(
		identity, http.MethodGet, "/me", "/me",
		suite.api.GetCurrentUser, nil,
	)
	require.NoError(err)
	body, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code, string(body))

	var user models.User
	require.NoError(json.Unmarshal(body, &user))
	return user
}

func (suite *HandlerTestSuite) TestFirstRequestCreatesUser() {
	assert := suite.Assert()

	user := suite.currentUser(testUserA)
	assert.Equal(testUserA.ID, user.IdentityID)
	assert.Equal(testUserA.Email, user.Email)
	assert.Equal(models.RoleUser, user.Role)
	assert.False(user.LastSignedIn.IsZero())

	// The same identity maps onto the same record.
	again := suite.currentUser(testUserA)
	assert.Equal(user.ID, again.ID)
}

func (suite *HandlerTestSuite) TestOwnerIdentityBootstrapsAdmin() {
	assert := suite.Assert()

	admin := suite.currentUser(testAdmin)
	assert.Equal(models.RoleAdmin, admin.Role)
}

func (suite *HandlerTestSuite) TestListUsersIsAdminOnly() {
	assert := suite.Assert()
	require := suite.Require()

	suite.currentUser(testUserA)
	suite.currentUser(testUserB)

	_, res, err := suite.ServeRequest(
		testUserA, http.MethodGet, "/", "/",
		suite.api.ListUsers, nil,
	)
	require.NoError(err)
	assert.Equal(http.StatusForbidden, res.Code)

	_, res, err = suite.ServeRequest(
		testAdmin, http.MethodGet, "/", "/",
		suite.api.ListUsers, nil,
	)
	require.NoError(err)
	body, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code, string(body))

	var users []models.User
	require.NoError(json.Unmarshal(body, &users))
	assert.Len(users, 3)
}

func (suite *HandlerTestSuite) TestGetUserSelfOrAdmin() {
	assert := suite.Assert()
	require := suite.Require()

	userA := suite.currentUser(testUserA)
	userB := suite.currentUser(testUserB)

	_, res, err := suite.ServeRequest(
		testUserA, http.MethodGet, "/:id", fmt.Sprintf("/%d", userA.ID),
		suite.api.GetUser, nil,
	)
	require.NoError(err)
	assert.Equal(http.StatusOK, res.Code)

	_, res, err = suite.ServeRequest(
		testUserA, http.MethodGet, "/:id", fmt.Sprintf("/%d", userB.ID),
		suite.api.GetUser, nil,
	)
	require.NoError(err)
	assert.Equal(http.StatusForbidden, res.Code)

	_, res, err = suite.ServeRequest(
		testAdmin, http.MethodGet, "/:id", fmt.Sprintf("/%d", userB.ID),
		suite.api.GetUser, nil,
	)
	require.NoError(err)
	assert.Equal(http.StatusOK, res.Code)
}

func (suite *HandlerTestSuite) TestUpdateUserRole() {
	assert := suite.Assert()
	require := suite.Require()

	userA := suite.currentUser(testUserA)

	// Non-admins cannot grant roles, not even their own.
	_, res, err := suite.ServeRequest(
		testUserA, http.MethodPatch, "/:id/role", fmt.Sprintf("/%d/role", userA.ID),
		suite.api.UpdateUserRole,
		suite.jsonBody(models.UpdateUserRole{Role: models.RoleAdmin}),
	)
	require.NoError(err)
	assert.Equal(http.StatusForbidden, res.Code)

	_, res, err = suite.ServeRequest(
		testAdmin, http.MethodPatch, "/:id/role", fmt.Sprintf("/%d/role", userA.ID),
		suite.api.UpdateUserRole,
		suite.jsonBody(models.UpdateUserRole{Role: models.RoleFarmerSmall}),
	)
	require.NoError(err)
	body, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code, string(body))

	var updated models.User
	require.NoError(json.Unmarshal(body, &updated))
	assert.Equal(models.RoleFarmerSmall, updated.Role)

	// Roles outside the closed set are rejected.
	_, res, err = suite.ServeRequest(
		testAdmin, http.MethodPatch, "/:id/role", fmt.Sprintf("/%d/role", userA.ID),
		suite.api.UpdateUserRole,
		suite.jsonBody(models.UpdateUserRole{Role: "overlord"}),
	)
	require.NoError(err)
	assert.Equal(http.StatusBadRequest, res.Code)

	// Unknown users read as absent.
	_, res, err = suite.ServeRequest(
		testAdmin, http.MethodPatch, "/:id/role", "/99999/role",
		suite.api.UpdateUserRole,
		suite.jsonBody(models.UpdateUserRole{Role: models.RoleUser}),
	)
	require.NoError(err)
	assert.Equal(http.StatusNotFound, res.Code)
}

func (suite *HandlerTestSuite) TestFeatureFlagEndpoints() {
	assert := suite.Assert()
	require := suite.Require()

	_, res, err := suite.ServeRequest(
		testUserA, http.MethodGet, "/", "/",
		suite.api.ListFeatureFlags, nil,
	)
	require.NoError(err)
	body, err := io.ReadAll(res.Body)
	require.NoError(err)
	require.Equal(http.StatusOK, res.Code, string(body))

	var flags map[string]bool
	require.NoError(json.Unmarshal(body, &flags))
	assert.Contains(flags, "cascade-delete")
	assert.Contains(flags, "degraded-reads")

	_, res, err = suite.ServeRequest(
		testUserA, http.MethodGet, "/:name", "/cascade-delete",
		suite.api.GetFeatureFlag, nil,
	)
	require.NoError(err)
	assert.Equal(http.StatusOK, res.Code)

	_, res, err = suite.ServeRequest(
		testUserA, http.MethodGet, "/:name", "/warp-drive",
		suite.api.GetFeatureFlag, nil,
	)
	require.NoError(err)
	assert.Equal(http.StatusNotFound, res.Code)
}
