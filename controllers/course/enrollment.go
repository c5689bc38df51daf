package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"lumos/database"
	"lumos/logger"
	"lumos/middleware"
	"lumos/models"
	"lumos/models/payment"
	"lumos/utils"
	courseValidator "lumos/validators/course"
)

// HasCompletedCoursePayment reports whether the user paid for the whole course
func HasCompletedCoursePayment(db *gorm.DB, userID, courseID uint) bool {
	var count int64
	db.Model(&payment.Payment{}).
		Where("user_id = ? AND course_id = ? AND status = ?", userID, courseID, payment.StatusCompleted).
		Count(&count)
	return count > 0
}

func EnrollInCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db
	course, err := findPublishedCourse(db, c.Params("slug"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !course.IsFree() && !HasCompletedCoursePayment(db, userID, course.ID) {
		return middleware.JsonResponse(c, fiber.StatusPaymentRequired, false, "Payment required to enroll in this course.", fiber.Map{
			"checkout": fmt.Sprintf("/payments/checkout/course/%d", course.ID),
		})
	}

	var enrollment *models.Enrollment
	var created bool
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		enrollment, created, err = utils.GetOrCreateEnrollment(tx, userID, course.ID)
		return err
	})
	if err != nil {
		logger.Error(err, "enrollment failed", map[string]interface{}{"user_id": userID, "course_id": course.ID})
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}

	if !created {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "You are already enrolled in "+course.Title+".", enrollment)
	}

	if user := middleware.CurrentUser(c); user != nil {
		utils.SendEnrollmentEmail(user.Email, user.FullName(), course.Title)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Successfully enrolled in "+course.Title+"!", enrollment)
}

// MarkMaterialComplete records a finished material and recomputes course progress
func MarkMaterialComplete(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	materialID := c.Locals("id").(uint)
	reqData, _ := c.Locals("validatedProgress").(*courseValidator.ProgressRequest)
	if reqData == nil {
		reqData = &courseValidator.ProgressRequest{}
	}

	db := database.Database.Db

	var material models.Material
	if err := db.Preload("Course").First(&material, materialID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Material not found!", nil)
	}

	var enrollment models.Enrollment
	if err := db.Where("student_id = ? AND course_id = ? AND is_active = ?", userID, material.CourseID, true).
		First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "You are not enrolled in this course!", nil)
	}

	var certificate *models.Certificate
	var issued bool
	tx := db.Begin()
	err := func() error {
		var progress models.Progress
		err := tx.Where("enrollment_id = ? AND material_id = ?", enrollment.ID, material.ID).First(&progress).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			progress = models.Progress{EnrollmentID: enrollment.ID, MaterialID: material.ID}
			if err := tx.Create(&progress).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"is_completed":       true,
			"time_spent_minutes": progress.TimeSpentMinutes + reqData.TimeSpentMinutes,
		}
		if !progress.IsCompleted {
			updates["completed_at"] = time.Now()
		}
		if err := tx.Model(&progress).Updates(updates).Error; err != nil {
			return err
		}

		if err := utils.RecalculateProgress(tx, &enrollment); err != nil {
			return err
		}
		if enrollment.CompletedAt != nil {
			certificate, issued, err = utils.IssueCertificate(tx, &enrollment)
			return err
		}
		return nil
	}()
	if err != nil {
		tx.Rollback()
		logger.Error(err, "marking progress failed", map[string]interface{}{"enrollment_id": enrollment.ID})
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
	}
	tx.Commit()

	if issued {
		if user := middleware.CurrentUser(c); user != nil {
			utils.SendCertificateEmail(user.Email, user.FullName(), material.Course.Title, certificate.CertificateID)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated successfully!", fiber.Map{
		"progress":    enrollment.ProgressPercentage,
		"completed":   enrollment.CompletedAt != nil,
		"certificate": certificate,
	})
}
