package controllers_test

import (
	"encoding/json"
	"fmt"
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
	"lumos/utils"
)

func hasSubject(outbox *utils.Outbox, subject string) func() bool {
	return func() bool {
		for _, msg := range outbox.Messages() {
			if msg.Subject == subject {
				return true
			}
		}
		return false
	}
}

func TestEnrollInFreeCourse(t *testing.T) {
	db := testutil.SetupDB(t)
	app := routers.New(true)
	outbox := &utils.Outbox{}
	utils.SetMailer(outbox)

	teacher := testutil.CreateUser(t, db, "teacher", models.RoleTeacher)
	student := testutil.CreateUser(t, db, "student", models.RoleStudent)
	course := testutil.CreateCourse(t, db, teacher, testutil.CreateCategory(t, db, "Go"), "Go Basics", "0")
	token := testutil.Token(t, student)

	resp := testutil.Do(t, app, http.MethodPost, "/courses/"+course.Slug+"/enroll", nil, token)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Message)
	assert.Eventually(t, hasSubject(outbox, "Enrolled: Go Basics"), time.Second, 10*time.Millisecond)

	resp = testutil.Do(t, app, http.MethodPost, "/courses/"+course.Slug+"/enroll", nil, token)
	assert.Equal(t, http.StatusOK, resp.Code)

	var count int64
	db.Model(&models.Enrollment{}).Where("student_id = ?", student.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	resp = testutil.Do(t, app, http.MethodPost, "/courses/missing/enroll", nil, token)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = testutil.Do(t, app, http.MethodPost, "/courses/"+course.Slug+"/enroll", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestEnrollInPaidCourseRequiresPayment(t *testing.T) {
	db := testutil.SetupDB(t)
	app := routers.New(true)
	teacher := testutil.CreateUser(t, db, "teacher", models.RoleTeacher)
	student := testutil.CreateUser(t, db, "student", models.RoleStudent)
	course := testutil.CreateCourse(t, db, teacher, testutil.CreateCategory(t, db, "Go"), "Go Pro", "49.99")
	token := testutil.Token(t, student)

	resp := testutil.Do(t, app, http.MethodPost, "/courses/"+course.Slug+"/enroll", nil, token)
	require.Equal(t, http.StatusPaymentRequired, resp.Code)
	assert.Equal(t, fmt.Sprintf("/payments/checkout/course/%d", course.ID), resp.DataMap(t)["checkout"])

	require.NoError(t, db.Create(&payment.Payment{
		UserID:   student.ID,
		CourseID: &course.ID,
		Amount:   decimal.RequireFromString("49.99"),
		Currency: "USD",
		Method:   payment.MethodPaypal,
		Status:   payment.StatusCompleted,
	}).Error)

	resp = testutil.Do(t, app, http.MethodPost, "/courses/"+course.Slug+"/enroll", nil, token)
	assert.Equal(t, http.StatusCreated, resp.Code)
}

func TestMarkMaterialCompleteIssuesCertificate(t *testing.T) {
	db := testutil.SetupDB(t)
	app := routers.New(true)
	outbox := &utils.Outbox{}
	utils.SetMailer(outbox)

	teacher := testutil.CreateUser(t, db, "teacher", models.RoleTeacher)
	student := testutil.CreateUser(t, db, "student", models.RoleStudent)
	outsider := testutil.CreateUser(t, db, "outsider", models.RoleStudent)
	course := testutil.CreateCourse(t, db, teacher, testutil.CreateCategory(t, db, "Go"), "Go Basics", "0")
	first := testutil.CreateMaterial(t, db, course, "Intro", models.MaterialTypeVideo, 1, true, "0")
	second := testutil.CreateMaterial(t, db, course, "Slides", models.MaterialTypePDF, 2, true, "0")
	testutil.Enroll(t, db, student, course)
	token := testutil.Token(t, student)

	resp := testutil.Do(t, app, http.MethodPost, fmt.Sprintf("/courses/materials/%d/progress", first.ID), nil, testutil.Token(t, outsider))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = testutil.Do(t, app, http.MethodPost, fmt.Sprintf("/courses/materials/%d/progress", first.ID),
		map[string]int{"time_spent_minutes": 12}, token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Message)
	data := resp.DataMap(t)
	assert.EqualValues(t, 50, data["progress"])
	assert.Equal(t, false, data["completed"])
	assert.Nil(t, data["certificate"])

	// repeating a material does not count twice
	resp = testutil.Do(t, app, http.MethodPost, fmt.Sprintf("/courses/materials/%d/progress", first.ID), nil, token)
	assert.EqualValues(t, 50, resp.DataMap(t)["progress"])

	resp = testutil.Do(t, app, http.MethodPost, fmt.Sprintf("/courses/materials/%d/progress", second.ID), nil, token)
	require.Equal(t, http.StatusOK, resp.Code)
	data = resp.DataMap(t)
	assert.EqualValues(t, 100, data["progress"])
	assert.Equal(t, true, data["completed"])
	certificate := data["certificate"].(map[string]interface{})
	certID := certificate["certificate_id"].(string)
	assert.Contains(t, certID, "LUMOS-")

	var progress models.Progress
	require.NoError(t, db.Where("material_id = ?", first.ID).First(&progress).Error)
	assert.EqualValues(t, 12, progress.TimeSpentMinutes)

	assert.Eventually(t, hasSubject(outbox, "Your certificate for Go Basics"), time.Second, 10*time.Millisecond)

	resp = testutil.Do(t, app, http.MethodGet, "/user/certificates", nil, token)
	require.Equal(t, http.StatusOK, resp.Code)
	var certs []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &certs))
	require.Len(t, certs, 1)

	resp = testutil.Do(t, app, http.MethodGet, "/certificates/"+certID+"/verify", nil, "")
	require.Equal(t, http.StatusOK, resp.Code)
	verified := resp.DataMap(t)
	assert.Equal(t, true, verified["is_valid"])
	assert.Equal(t, "Go Basics", verified["course_title"])
	assert.Equal(t, student.FullName(), verified["student_name"])

	resp = testutil.Do(t, app, http.MethodGet, "/certificates/LUMOS-NOPE/verify", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
