package middleware_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumos/config"
	"lumos/middleware"
	"lumos/models"
	"lumos/testutil"
)

func whoami(c *fiber.Ctx) error {
	userID, _ := c.Locals("userId").(uint)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "ok", fiber.Map{"user_id": userID})
}

func TestJWTMiddleware(t *testing.T) {
	db := testutil.SetupDB(t)
	user := testutil.CreateUser(t, db, "erin", models.RoleStudent)

	app := fiber.New()
	app.Get("/me", middleware.JWTMiddleware, whoami)
	app.Get("/maybe", middleware.OptionalJWTMiddleware, whoami)

	resp := testutil.Do(t, app, http.MethodGet, "/me", nil, testutil.Token(t, user))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, user.ID, resp.DataMap(t)["user_id"])

	resp = testutil.Do(t, app, http.MethodGet, "/me", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Missing or invalid Authorization header", resp.Message)

	resp = testutil.Do(t, app, http.MethodGet, "/me", nil, "not-a-jwt")
	assert.Equal(t, "Invalid or expired token", resp.Message)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": user.ID,
		"exp":    time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := expired.SignedString([]byte(config.AppConfig.JWTKey))
	require.NoError(t, err)
	resp = testutil.Do(t, app, http.MethodGet, "/me", nil, signed)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"userId": user.ID})
	signed, err = forged.SignedString([]byte("another-secret"))
	require.NoError(t, err)
	resp = testutil.Do(t, app, http.MethodGet, "/me", nil, signed)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = testutil.Do(t, app, http.MethodGet, "/maybe", nil, "not-a-jwt")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 0, resp.DataMap(t)["user_id"])
}

func TestPermissionMiddleware(t *testing.T) {
	db := testutil.SetupDB(t)
	admin := testutil.CreateUser(t, db, "admin", models.RoleAdmin)
	manager := testutil.CreateUser(t, db, "manager", models.RoleContentManager)
	student := testutil.CreateUser(t, db, "student", models.RoleStudent)
	superuser := testutil.CreateUser(t, db, "root", models.RoleStudent)
	require.NoError(t, db.Model(superuser).Update("is_superuser", true).Error)

	app := fiber.New()
	app.Get("/admin", middleware.JWTMiddleware, middleware.RequireAdmin, whoami)
	app.Get("/manage", middleware.JWTMiddleware, middleware.RequireCourseManager, whoami)

	tests := []struct {
		path string
		user *models.User
		want int
	}{
		{"/admin", admin, http.StatusOK},
		{"/admin", superuser, http.StatusOK},
		{"/admin", manager, http.StatusForbidden},
		{"/admin", student, http.StatusForbidden},
		{"/manage", manager, http.StatusOK},
		{"/manage", admin, http.StatusOK},
		{"/manage", student, http.StatusForbidden},
	}
	for _, tt := range tests {
		resp := testutil.Do(t, app, http.MethodGet, tt.path, nil, testutil.Token(t, tt.user))
		assert.Equal(t, tt.want, resp.Code, tt.path+" as "+tt.user.Username)
	}

	require.NoError(t, db.Model(admin).Update("is_active", false).Error)
	resp := testutil.Do(t, app, http.MethodGet, "/admin", nil, testutil.Token(t, admin))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestRateLimit(t *testing.T) {
	testutil.SetupDB(t)
	app := fiber.New()
	app.Get("/", middleware.RateLimit(2), whoami)

	for i := 0; i < 2; i++ {
		resp := testutil.Do(t, app, http.MethodGet, "/", nil, "")
		require.Equal(t, http.StatusOK, resp.Code)
	}
	resp := testutil.Do(t, app, http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.False(t, resp.Status)
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })

	resp := testutil.Do(t, app, http.MethodGet, "/teapot", nil, "")
	assert.Equal(t, http.StatusTeapot, resp.Code)
	assert.Equal(t, "short and stout", resp.Message)

	resp = testutil.Do(t, app, http.MethodGet, "/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.False(t, resp.Status)
}
