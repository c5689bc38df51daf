package authController_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumos/models"
	"lumos/routers"
	"lumos/testutil"
)

func TestSignup(t *testing.T) {
	db := testutil.SetupDB(t)
	app := routers.New(true)

	resp := testutil.Do(t, app, http.MethodPost, "/auth/signup", map[string]string{
		"username":   "alice",
		"email":      "Alice@Example.com",
		"password":   "supersecret",
		"first_name": "Alice",
	}, "")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Message)
	data := resp.DataMap(t)
	assert.Equal(t, "alice@example.com", data["email"])
	assert.Equal(t, models.RoleStudent, data["role"])
	assert.NotContains(t, data, "password")

	var profiles int64
	db.Model(&models.UserProfile{}).Count(&profiles)
	assert.Equal(t, int64(1), profiles)

	resp = testutil.Do(t, app, http.MethodPost, "/auth/signup", map[string]string{
		"username": "alice2",
		"email":    "alice@example.com",
		"password": "supersecret",
	}, "")
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "Email is already registered!", resp.Message)

	resp = testutil.Do(t, app, http.MethodPost, "/auth/signup", map[string]string{
		"username": "alice",
		"email":    "other@example.com",
		"password": "supersecret",
	}, "")
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestSignupValidation(t *testing.T) {
	testutil.SetupDB(t)
	app := routers.New(true)

	resp := testutil.Do(t, app, http.MethodPost, "/auth/signup", map[string]string{
		"username": "bob",
		"email":    "not-an-email",
		"password": "short",
		"role":     "admin",
	}, "")
	require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	errs := resp.DataMap(t)
	assert.Contains(t, errs, "email")
	assert.Contains(t, errs, "password")
	assert.Contains(t, errs, "role")

	resp = testutil.Do(t, app, http.MethodPost, "/auth/signup", "{broken", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestLogin(t *testing.T) {
	db := testutil.SetupDB(t)
	app := routers.New(true)
	user := testutil.CreateUser(t, db, "carol", models.RoleStudent)

	resp := testutil.Do(t, app, http.MethodPost, "/auth/login", map[string]string{
		"email":    user.Email,
		"password": testutil.Password,
	}, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Message)
	assert.NotEmpty(t, resp.DataMap(t)["token"])

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	assert.NotNil(t, reloaded.LastLogin)

	resp = testutil.Do(t, app, http.MethodPost, "/auth/login", map[string]string{
		"username": "carol",
		"password": testutil.Password,
	}, "")
	assert.Equal(t, http.StatusOK, resp.Code)

	var records []models.LoginRecord
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&records).Error)
	assert.Len(t, records, 2)

	token := testutil.Token(t, user)
	resp = testutil.Do(t, app, http.MethodGet, "/user/login-history", nil, token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Message)
	logins := resp.DataMap(t)["logins"].([]interface{})
	assert.Len(t, logins, 2)

	resp = testutil.Do(t, app, http.MethodPost, "/auth/login", map[string]string{
		"username": "carol",
		"password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Invalid credentials!", resp.Message)

	resp = testutil.Do(t, app, http.MethodPost, "/auth/login", map[string]string{"password": "x"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	require.NoError(t, db.Model(user).Update("is_active", false).Error)
	resp = testutil.Do(t, app, http.MethodPost, "/auth/login", map[string]string{
		"email":    user.Email,
		"password": testutil.Password,
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
