// Package testutil holds fixtures shared by the controller and utils tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"lumos/config"
	"lumos/database"
	"lumos/gateway"
	"lumos/middleware"
	"lumos/models"
)

const Password = "password123"

// SetupDB points the global config and database at a fresh in-memory sqlite database.
func SetupDB(t *testing.T) *gorm.DB {
	t.Helper()
	config.AppConfig = config.Default()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.Open(sqlite.Open(dsn), logger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// CreateUser stores an active user with Password as password.
func CreateUser(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:          username,
		Email:             username + "@example.com",
		FirstName:         strings.ToUpper(username[:1]) + username[1:],
		Password:          string(hash),
		Role:              role,
		IsActive:          true,
		IsTeacherApproved: role == models.RoleTeacher,
	}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.UserProfile{UserID: user.ID, Timezone: "UTC"}).Error)
	return user
}

func Token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := middleware.GenerateJWT(user.ID, user.Username, user.Role, user.Email)
	require.NoError(t, err)
	return token
}

func CreateCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name, Slug: strings.ToLower(strings.ReplaceAll(name, " ", "-"))}
	require.NoError(t, db.Create(category).Error)
	return category
}

// CreateCourse stores a published course with the given price.
func CreateCourse(t *testing.T, db *gorm.DB, instructor *models.User, category *models.Category, title, price string) *models.Course {
	t.Helper()
	course := &models.Course{
		Title:        title,
		Slug:         strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		Description:  title + " description",
		InstructorID: instructor.ID,
		CategoryID:   category.ID,
		Price:        decimal.RequireFromString(price),
		Difficulty:   models.DifficultyBeginner,
		IsPublished:  true,
	}
	require.NoError(t, db.Create(course).Error)
	return course
}

func CreateMaterial(t *testing.T, db *gorm.DB, course *models.Course, title, kind string, order uint, isFree bool, price string) *models.Material {
	t.Helper()
	material := &models.Material{
		CourseID:     course.ID,
		Title:        title,
		MaterialType: kind,
		FileURL:      "https://cdn.example.com/" + strings.ReplaceAll(title, " ", "_"),
		Order:        order,
		IsFree:       isFree,
		Price:        decimal.RequireFromString(price),
	}
	require.NoError(t, db.Create(material).Error)
	return material
}

func Enroll(t *testing.T, db *gorm.DB, student *models.User, course *models.Course) *models.Enrollment {
	t.Helper()
	enrollment := &models.Enrollment{StudentID: student.ID, CourseID: course.ID, IsActive: true}
	require.NoError(t, db.Create(enrollment).Error)
	return enrollment
}

// Response is the decoded JSON envelope written by middleware.JsonResponse.
type Response struct {
	Code    int
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// DataMap decodes Data as an object.
func (r Response) DataMap(t *testing.T) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(r.Data, &out))
	return out
}

// Do sends body as JSON (raw when it is a string) with an optional bearer token.
func Do(t *testing.T, app *fiber.App, method, path string, body interface{}, token string) Response {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := Response{Code: resp.StatusCode}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return out
}

// FakeGateway records calls and answers from its fields.
type FakeGateway struct {
	mu sync.Mutex

	CreateErr  error
	ExecuteErr error
	RefundErr  error
	VerifyOK   bool

	Created  []gateway.Order
	Executed []string
	Refunds  []string
}

var _ gateway.Gateway = (*FakeGateway)(nil)

// InstallFakeGateway makes a FakeGateway the default for the duration of t.
func InstallFakeGateway(t *testing.T) *FakeGateway {
	prev := gateway.Default
	fake := &FakeGateway{VerifyOK: true}
	gateway.Default = fake
	t.Cleanup(func() { gateway.Default = prev })
	return fake
}

func (f *FakeGateway) CreatePayment(_ context.Context, order gateway.Order) (*gateway.Created, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return nil, f.CreateErr
	}
	f.Created = append(f.Created, order)
	id := "PAY-" + order.Reference
	return &gateway.Created{
		GatewayID:   id,
		ApprovalURL: "https://paypal.test/approve/" + id,
		Raw:         json.RawMessage(`{"id":"` + id + `"}`),
	}, nil
}

func (f *FakeGateway) ExecutePayment(_ context.Context, gatewayID, payerID string) (*gateway.Executed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ExecuteErr != nil {
		return nil, f.ExecuteErr
	}
	f.Executed = append(f.Executed, gatewayID+"/"+payerID)
	return &gateway.Executed{State: "approved", SaleID: "SALE-" + gatewayID, Raw: json.RawMessage(`{"state":"approved"}`)}, nil
}

func (f *FakeGateway) RefundPayment(_ context.Context, gatewayID string, amount decimal.Decimal, currency string) (*gateway.Refunded, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RefundErr != nil {
		return nil, f.RefundErr
	}
	f.Refunds = append(f.Refunds, gatewayID+"/"+amount.StringFixed(2)+currency)
	return &gateway.Refunded{RefundID: "REF-" + gatewayID, State: "completed", Raw: json.RawMessage(`{"state":"completed"}`)}, nil
}

func (f *FakeGateway) VerifyWebhook(context.Context, map[string]string, []byte) (bool, error) {
	return f.VerifyOK, nil
}

// JSONRequest is a shortcut for building raw requests in tests that need headers.
func JSONRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}
