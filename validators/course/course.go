package courseValidator

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"lumos/middleware"
	"lumos/models"
	"lumos/validators/shared"
)

type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=100"`
	Description string `json:"description"`
}

type CourseRequest struct {
	Title         string          `json:"title" validate:"required,notblank,min=3,max=200"`
	Description   string          `json:"description" validate:"required,notblank,min=5"`
	CategoryID    uint            `json:"category_id" validate:"required"`
	ThumbnailURL  string          `json:"thumbnail_url" validate:"omitempty,url"`
	Price         decimal.Decimal `json:"price"`
	Difficulty    string          `json:"difficulty" validate:"required,oneof=beginner intermediate advanced"`
	DurationHours uint            `json:"duration_hours"`
	IsFeatured    bool            `json:"is_featured"`
}

type MaterialRequest struct {
	Title           string          `json:"title" validate:"required,notblank,max=200"`
	MaterialType    string          `json:"material_type" validate:"required,oneof=pdf video ebook"`
	FileURL         string          `json:"file_url" validate:"required,url"`
	Description     string          `json:"description"`
	Order           uint            `json:"order"`
	IsFree          bool            `json:"is_free"`
	Price           decimal.Decimal `json:"price"`
	DurationMinutes *uint           `json:"duration_minutes"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment" validate:"max=5000"`
}

type ProgressRequest struct {
	TimeSpentMinutes uint `json:"time_spent_minutes"`
}

// IDParam validates a positive integer route parameter and stores it in c.Locals(name)
func IDParam(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		idStr := strings.TrimSpace(c.Params(name))
		id, err := strconv.Atoi(idStr)
		if err != nil || id <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+name+"!", nil)
		}
		c.Locals(name, uint(id))
		return c.Next()
	}
}

func CreateCategory() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := shared.BindBody(c, new(CreateCategoryRequest), "validatedCategory"); !ok {
			return err
		}
		return c.Next()
	}
}

func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseRequest)
		if ok, err := shared.BindBody(c, reqData, "validatedCourse"); !ok {
			return err
		}
		if reqData.Price.IsNegative() {
			return middleware.ValidationErrorResponse(c, map[string]string{"price": "Price cannot be negative!"})
		}
		return c.Next()
	}
}

func CreateMaterial() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(MaterialRequest)
		if ok, err := shared.BindBody(c, reqData, "validatedMaterial"); !ok {
			return err
		}
		if reqData.Price.IsNegative() {
			return middleware.ValidationErrorResponse(c, map[string]string{"price": "Price cannot be negative!"})
		}
		return c.Next()
	}
}

// SubmitReview checks the rating range before the review is stored
func SubmitReview() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ReviewRequest)
		if ok, err := shared.BindBody(c, reqData, "validatedReview"); !ok {
			return err
		}
		if !models.IsValidRating(reqData.Rating) {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"rating": "Invalid rating. Please select 1-5 stars.",
			})
		}
		return c.Next()
	}
}

// MarkProgress accepts an empty body
func MarkProgress() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ProgressRequest)
		if len(c.Body()) > 0 {
			if ok, err := shared.BindBody(c, reqData, "validatedProgress"); !ok {
				return err
			}
		}
		c.Locals("validatedProgress", reqData)
		return c.Next()
	}
}
