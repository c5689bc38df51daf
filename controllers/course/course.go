package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lumos/database"
	"lumos/logger"
	"lumos/middleware"
	"lumos/models"
	"lumos/utils"
)

const coursePageSize = 12

// CourseSummary is a course with its derived rating and enrollment figures
type CourseSummary struct {
	models.Course
	AverageRating    float64 `json:"average_rating"`
	TotalEnrollments int64   `json:"total_enrollments"`
}

// AverageRating is the mean over every review of the course, 0 when there are none
func AverageRating(db *gorm.DB, courseID uint) float64 {
	var avg float64
	db.Model(&models.Review{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg)
	return avg
}

func TotalEnrollments(db *gorm.DB, courseID uint) int64 {
	var total int64
	db.Model(&models.Enrollment{}).Where("course_id = ? AND is_active = ?", courseID, true).Count(&total)
	return total
}

func Summarize(db *gorm.DB, course models.Course) CourseSummary {
	return CourseSummary{
		Course:           course,
		AverageRating:    AverageRating(db, course.ID),
		TotalEnrollments: TotalEnrollments(db, course.ID),
	}
}

func findPublishedCourse(db *gorm.DB, slug string) (*models.Course, error) {
	var course models.Course
	err := db.Preload("Instructor").Preload("Category").
		Where("slug = ? AND is_published = ?", slug, true).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// ListCourses returns published courses filtered by category slug, difficulty and title search
func ListCourses(c *fiber.Ctx) error {
	db := database.Database.Db
	page, limit, offset := utils.PageParams(c, coursePageSize)

	category := strings.TrimSpace(c.Query("category"))
	difficulty := strings.TrimSpace(c.Query("difficulty"))
	search := strings.TrimSpace(c.Query("search"))

	query := db.Model(&models.Course{}).Where("is_published = ?", true)
	if category != "" {
		query = query.Where("category_id IN (?)", db.Model(&models.Category{}).Select("id").Where("slug = ?", category))
	}
	if difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}
	if search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error(err, "counting courses failed", nil)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	var courses []models.Course
	if err := query.Preload("Instructor").Preload("Category").
		Order("created_at desc").Offset(offset).Limit(limit).
		Find(&courses).Error; err != nil {
		logger.Error(err, "listing courses failed", nil)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	summaries := make([]CourseSummary, 0, len(courses))
	for _, course := range courses {
		summaries = append(summaries, Summarize(db, course))
	}

	var categories []models.Category
	db.Order("name asc").Find(&categories)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses":    summaries,
		"categories": categories,
		"filters": fiber.Map{
			"category":   category,
			"difficulty": difficulty,
			"search":     search,
		},
		"pagination": utils.Pagination(total, page, limit),
	})
}

func ListCategories(c *fiber.Ctx) error {
	var categories []models.Category
	if err := database.Database.Db.Order("name asc").Find(&categories).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch categories!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Categories fetched successfully!", categories)
}

// GetCourseDetail shows a published course. Authenticated callers also get their enrollment.
func GetCourseDetail(c *fiber.Ctx) error {
	db := database.Database.Db

	course, err := findPublishedCourse(db, c.Params("slug"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var materials []models.Material
	db.Where("course_id = ?", course.ID).Order("sort_order asc, id asc").Find(&materials)

	var reviews []models.Review
	db.Preload("Student").
		Where("course_id = ? AND is_approved = ?", course.ID, true).
		Order("created_at desc").Limit(5).
		Find(&reviews)

	response := fiber.Map{
		"course":      Summarize(db, *course),
		"materials":   materials,
		"reviews":     reviews,
		"is_enrolled": false,
		"enrollment":  nil,
	}

	if userID, ok := c.Locals("userId").(uint); ok {
		var enrollment models.Enrollment
		err := db.Where("student_id = ? AND course_id = ? AND is_active = ?", userID, course.ID, true).First(&enrollment).Error
		if err == nil {
			response["is_enrolled"] = true
			response["enrollment"] = enrollment
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", response)
}
