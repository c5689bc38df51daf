package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	controllers "lumos/controllers/course"
	"lumos/models"
	"lumos/routers"
	"lumos/testutil"
)

func TestListCourses(t *testing.T) {
	db := testutil.SetupDB(t)
	app := routers.New(true)
	teacher := testutil.CreateUser(t, db, "teacher", models.RoleTeacher)
	golang := testutil.CreateCategory(t, db, "Go")
	python := testutil.CreateCategory(t, db, "Python")

	testutil.CreateCourse(t, db, teacher, golang, "Go Basics", "0")
	advanced := testutil.CreateCourse(t, db, teacher, golang, "Go Concurrency", "49.99")
	require.NoError(t, db.Model(advanced).Update("difficulty", models.DifficultyAdvanced).Error)
	testutil.CreateCourse(t, db, teacher, python, "Python Basics", "0")
	hidden := testutil.CreateCourse(t, db, teacher, python, "Python Secrets", "0")
	require.NoError(t, db.Model(hidden).Update("is_published", false).Error)

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"?category=go", 2},
		{"?difficulty=advanced", 1},
		{"?search=BASICS", 2},
		{"?category=python&search=secrets", 0},
	}
	for _, tt := range tests {
		resp := testutil.Do(t, app, http.MethodGet, "/courses"+tt.query, nil, "")
		require.Equal(t, http.StatusOK, resp.Code, tt.query)
		data := resp.DataMap(t)
		assert.Len(t, data["courses"], tt.want, tt.query)
		assert.Len(t, data["categories"], 2)
	}

	resp := testutil.Do(t, app, http.MethodGet, "/courses?limit=1&page=2", nil, "")
	data := resp.DataMap(t)
	assert.Len(t, data["courses"], 1)
	pagination := data["pagination"].(map[string]interface{})
	assert.EqualValues(t, 3, pagination["total"])
	assert.EqualValues(t, 2, pagination["page"])
}

func TestGetCourseDetail(t *testing.T) {
	db := testutil.SetupDB(t)
	app := routers.New(true)
	teacher := testutil.CreateUser(t, db, "teacher", models.RoleTeacher)
	student := testutil.CreateUser(t, db, "student", models.RoleStudent)
	course := testutil.CreateCourse(t, db, teacher, testutil.CreateCategory(t, db, "Go"), "Go Basics", "0")
	testutil.CreateMaterial(t, db, course, "Second", models.MaterialTypePDF, 2, false, "0")
	testutil.CreateMaterial(t, db, course, "First", models.MaterialTypeVideo, 1, true, "0")

	resp := testutil.Do(t, app, http.MethodGet, "/courses/"+course.Slug, nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	data := resp.DataMap(t)
	assert.Equal(t, false, data["is_enrolled"])
	materials := data["materials"].([]interface{})
	require.Len(t, materials, 2)
	assert.Equal(t, "First", materials[0].(map[string]interface{})["title"])
	assert.NotContains(t, materials[0], "file_url")

	testutil.Enroll(t, db, student, course)
	resp = testutil.Do(t, app, http.MethodGet, "/courses/"+course.Slug, nil, testutil.Token(t, student))
	assert.Equal(t, true, resp.DataMap(t)["is_enrolled"])

	resp = testutil.Do(t, app, http.MethodGet, "/courses/"+course.Slug, nil, "garbage")
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = testutil.Do(t, app, http.MethodGet, "/courses/missing-course", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestAverageRatingCountsEveryReview(t *testing.T) {
	db := testutil.SetupDB(t)
	teacher := testutil.CreateUser(t, db, "teacher", models.RoleTeacher)
	course := testutil.CreateCourse(t, db, teacher, testutil.CreateCategory(t, db, "Go"), "Go Basics", "0")

	assert.Zero(t, controllers.AverageRating(db, course.ID))

	for i, rating := range []int{5, 4, 3} {
		student := testutil.CreateUser(t, db, fmt.Sprintf("student%d", i), models.RoleStudent)
		require.NoError(t, db.Create(&models.Review{
			CourseID: course.ID, StudentID: student.ID, Rating: rating, IsApproved: i == 0,
		}).Error)
	}
	assert.InDelta(t, 4.0, controllers.AverageRating(db, course.ID), 0.001)
}

func TestAdminCourseManagement(t *testing.T) {
	db := testutil.SetupDB(t)
	app := routers.New(true)
	teacher := testutil.CreateUser(t, db, "teacher", models.RoleTeacher)
	other := testutil.CreateUser(t, db, "other", models.RoleTeacher)
	student := testutil.CreateUser(t, db, "student", models.RoleStudent)
	token := testutil.Token(t, teacher)

	resp := testutil.Do(t, app, http.MethodPost, "/admin/categories", map[string]string{"name": "Web Dev"}, testutil.Token(t, student))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = testutil.Do(t, app, http.MethodPost, "/admin/categories", map[string]string{"name": "Web Dev"}, token)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Message)
	category := resp.DataMap(t)
	assert.Equal(t, "web-dev", category["slug"])

	resp = testutil.Do(t, app, http.MethodPost, "/admin/categories", map[string]string{"name": "Web Dev"}, token)
	assert.Equal(t, http.StatusConflict, resp.Code)

	body := map[string]interface{}{
		"title":       "Intro to HTML",
		"description": "Learn the basics of HTML",
		"category_id": category["ID"],
		"price":       "19.99",
		"difficulty":  "beginner",
	}
	resp = testutil.Do(t, app, http.MethodPost, "/admin/courses", body, token)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Message)
	course := resp.DataMap(t)
	assert.Equal(t, "intro-to-html", course["slug"])
	assert.Equal(t, false, course["is_published"])
	courseID := course["ID"]

	body["price"] = "-1"
	resp = testutil.Do(t, app, http.MethodPost, "/admin/courses", body, token)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	body["price"] = "29.99"
	body["title"] = "HTML Fundamentals"
	path := fmt.Sprintf("/admin/courses/%v", courseID)
	resp = testutil.Do(t, app, http.MethodPut, path, body, token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Message)
	assert.Equal(t, "html-fundamentals", resp.DataMap(t)["slug"])

	resp = testutil.Do(t, app, http.MethodPut, path, body, testutil.Token(t, other))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = testutil.Do(t, app, http.MethodPatch, path+"/publish", nil, token)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Course published successfully!", resp.Message)

	resp = testutil.Do(t, app, http.MethodPost, path+"/materials", map[string]interface{}{
		"title":         "Tags",
		"material_type": "video",
		"file_url":      "https://cdn.example.com/tags.mp4",
		"is_free":       true,
	}, token)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Message)
	assert.EqualValues(t, 1, resp.DataMap(t)["order"])

	resp = testutil.Do(t, app, http.MethodPost, path+"/materials", map[string]interface{}{
		"title":         "Forms",
		"material_type": "pdf",
		"file_url":      "https://cdn.example.com/forms.pdf",
	}, token)
	require.Equal(t, http.StatusCreated, resp.Code)
	assert.EqualValues(t, 2, resp.DataMap(t)["order"])

	resp = testutil.Do(t, app, http.MethodPost, path+"/materials", map[string]interface{}{
		"title":         "Audio",
		"material_type": "podcast",
		"file_url":      "https://cdn.example.com/a.mp3",
	}, token)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = testutil.Do(t, app, http.MethodPatch, "/admin/courses/abc/publish", nil, token)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestUnapprovedTeacherCannotManageCourses(t *testing.T) {
	db := testutil.SetupDB(t)
	app := routers.New(true)
	teacher := testutil.CreateUser(t, db, "teacher", models.RoleTeacher)
	require.NoError(t, db.Model(teacher).Update("is_teacher_approved", false).Error)

	resp := testutil.Do(t, app, http.MethodPost, "/admin/categories", map[string]string{"name": "Art"}, testutil.Token(t, teacher))
	assert.Equal(t, http.StatusForbidden, resp.Code)
}
