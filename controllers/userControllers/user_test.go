package userController_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumos/models"
	"lumos/models/payment"
	"lumos/routers"
	"lumos/testutil"
)

func TestProfile(t *testing.T) {
	db := testutil.SetupDB(t)
	app := routers.New(true)
	user := testutil.CreateUser(t, db, "dana", models.RoleStudent)
	token := testutil.Token(t, user)

	resp := testutil.Do(t, app, http.MethodGet, "/user/profile", nil, token)
	require.Equal(t, http.StatusOK, resp.Code)
	data := resp.DataMap(t)
	assert.Equal(t, "dana", data["username"])
	assert.Equal(t, "UTC", data["profile"].(map[string]interface{})["timezone"])

	resp = testutil.Do(t, app, http.MethodPut, "/user/profile", map[string]interface{}{
		"bio":                   "Gopher in training",
		"date_of_birth":         "1990-04-01",
		"learning_goals":        "Ship a Go service",
		"notifications_enabled": false,
	}, token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Message)
	data = resp.DataMap(t)
	assert.Equal(t, "Gopher in training", data["bio"])
	assert.Equal(t, "Dana", data["first_name"])
	profile := data["profile"].(map[string]interface{})
	assert.Equal(t, "Ship a Go service", profile["learning_goals"])
	assert.Equal(t, false, profile["notifications_enabled"])
	assert.Equal(t, true, profile["email_notifications"])

	resp = testutil.Do(t, app, http.MethodPut, "/user/profile", map[string]interface{}{"date_of_birth": "01/04/1990"}, token)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = testutil.Do(t, app, http.MethodGet, "/user/profile", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	require.NoError(t, db.Model(user).Update("is_active", false).Error)
	resp = testutil.Do(t, app, http.MethodGet, "/user/profile", nil, token)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestDashboards(t *testing.T) {
	db := testutil.SetupDB(t)
	app := routers.New(true)
	admin := testutil.CreateUser(t, db, "admin", models.RoleAdmin)
	teacher := testutil.CreateUser(t, db, "teacher", models.RoleTeacher)
	student := testutil.CreateUser(t, db, "student", models.RoleStudent)
	pending := testutil.CreateUser(t, db, "pending", models.RoleTeacher)
	require.NoError(t, db.Model(pending).Update("is_teacher_approved", false).Error)

	category := testutil.CreateCategory(t, db, "Go")
	course := testutil.CreateCourse(t, db, teacher, category, "Go Pro", "49.99")
	testutil.Enroll(t, db, student, course)
	completedAt := time.Now()
	require.NoError(t, db.Create(&payment.Payment{
		UserID:      student.ID,
		CourseID:    &course.ID,
		Amount:      decimal.RequireFromString("49.99"),
		Currency:    "USD",
		Method:      payment.MethodPaypal,
		Status:      payment.StatusCompleted,
		CompletedAt: &completedAt,
	}).Error)

	resp := testutil.Do(t, app, http.MethodGet, "/user/dashboard", nil, testutil.Token(t, student))
	require.Equal(t, http.StatusOK, resp.Code, resp.Message)
	data := resp.DataMap(t)
	assert.Len(t, data["enrollments"], 1)
	recent := data["recent_payments"].([]interface{})
	require.Len(t, recent, 1)
	assert.Equal(t, "Go Pro", recent[0].(map[string]interface{})["item_name"])

	resp = testutil.Do(t, app, http.MethodGet, "/user/dashboard", nil, testutil.Token(t, teacher))
	require.Equal(t, http.StatusOK, resp.Code)
	data = resp.DataMap(t)
	assert.Len(t, data["courses"], 1)
	assert.EqualValues(t, 1, data["total_enrollments"])
	assert.Equal(t, "49.99", data["total_revenue"])

	resp = testutil.Do(t, app, http.MethodGet, "/user/dashboard", nil, testutil.Token(t, pending))
	data = resp.DataMap(t)
	assert.Contains(t, data, "enrollments")
	assert.NotContains(t, data, "total_revenue")

	resp = testutil.Do(t, app, http.MethodGet, "/user/dashboard", nil, testutil.Token(t, admin))
	data = resp.DataMap(t)
	assert.EqualValues(t, 4, data["total_users"])
	assert.EqualValues(t, 1, data["total_courses"])
	assert.Equal(t, models.RoleAdmin, data["role"])
}

func TestHomeAndEnrollments(t *testing.T) {
	db := testutil.SetupDB(t)
	app := routers.New(true)
	teacher := testutil.CreateUser(t, db, "teacher", models.RoleTeacher)
	student := testutil.CreateUser(t, db, "student", models.RoleStudent)
	category := testutil.CreateCategory(t, db, "Go")
	for _, title := range []string{"One", "Two", "Three", "Four", "Five", "Six", "Seven"} {
		testutil.CreateCourse(t, db, teacher, category, "Course "+title, "0")
	}
	var course models.Course
	require.NoError(t, db.Where("slug = ?", "course-one").First(&course).Error)
	testutil.Enroll(t, db, student, &course)

	resp := testutil.Do(t, app, http.MethodGet, "/home", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	data := resp.DataMap(t)
	assert.Len(t, data["featured_courses"], 6)
	assert.EqualValues(t, 7, data["total_courses"])
	assert.EqualValues(t, 1, data["total_students"])

	resp = testutil.Do(t, app, http.MethodGet, "/user/enrollments", nil, testutil.Token(t, student))
	require.Equal(t, http.StatusOK, resp.Code)
	enrollments := resp.DataMap(t)["enrollments"].([]interface{})
	require.Len(t, enrollments, 1)
	assert.Equal(t, "Course One", enrollments[0].(map[string]interface{})["course"].(map[string]interface{})["title"])
}
