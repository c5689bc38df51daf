package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"lumos/database"
	"lumos/logger"
	"lumos/middleware"
	"lumos/models"
	"lumos/utils"
	courseValidator "lumos/validators/course"
)

// SubmitReview creates the caller's review or updates it. Either way it waits for approval again.
func SubmitReview(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	reqData := c.Locals("validatedReview").(*courseValidator.ReviewRequest)
	db := database.Database.Db

	course, err := findPublishedCourse(db, c.Params("slug"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var enrolled int64
	db.Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ? AND is_active = ?", userID, course.ID, true).
		Count(&enrolled)
	if enrolled == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "You must be enrolled to review this course!", nil)
	}

	var review models.Review
	err = db.Where("course_id = ? AND student_id = ?", course.ID, userID).First(&review).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		review = models.Review{
			CourseID:  course.ID,
			StudentID: userID,
			Rating:    reqData.Rating,
			Comment:   reqData.Comment,
		}
		err = db.Create(&review).Error
	case err == nil:
		review.Rating = reqData.Rating
		review.Comment = reqData.Comment
		review.IsApproved = false
		err = db.Model(&review).Select("rating", "comment", "is_approved").Updates(&review).Error
	}
	if err != nil {
		logger.Error(err, "saving review failed", map[string]interface{}{"course_id": course.ID})
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit review!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review submitted successfully! Pending approval.", review)
}

// ListReviews returns approved reviews for a course (Visible to all)
func ListReviews(c *fiber.Ctx) error {
	db := database.Database.Db
	course, err := findPublishedCourse(db, c.Params("slug"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	page, limit, offset := utils.PageParams(c, 10)
	query := db.Model(&models.Review{}).Where("course_id = ? AND is_approved = ?", course.ID, true)

	var total int64
	query.Count(&total)

	var reviews []models.Review
	if err := query.Preload("Student").Order("created_at desc").Offset(offset).Limit(limit).Find(&reviews).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch reviews!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reviews fetched successfully!", fiber.Map{
		"reviews":        reviews,
		"average_rating": AverageRating(db, course.ID),
		"pagination":     utils.Pagination(total, page, limit),
	})
}

// ListReviewsAdmin lists reviews for moderation, pending ones by default
func ListReviewsAdmin(c *fiber.Ctx) error {
	db := database.Database.Db
	page, limit, offset := utils.PageParams(c, 20)

	query := db.Model(&models.Review{})
	switch c.Query("status", "pending") {
	case "pending":
		query = query.Where("is_approved = ?", false)
	case "approved":
		query = query.Where("is_approved = ?", true)
	case "all":
	default:
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid status filter!", nil)
	}

	var total int64
	query.Count(&total)

	var reviews []models.Review
	if err := query.Preload("Student").Order("created_at asc").Offset(offset).Limit(limit).Find(&reviews).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch reviews!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reviews fetched successfully!", fiber.Map{
		"reviews":    reviews,
		"pagination": utils.Pagination(total, page, limit),
	})
}

func ApproveReview(c *fiber.Ctx) error {
	db := database.Database.Db
	var review models.Review
	if err := db.First(&review, c.Locals("id").(uint)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Review not found!", nil)
	}

	if err := db.Model(&review).Update("is_approved", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to approve review!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review approved successfully!", review)
}
