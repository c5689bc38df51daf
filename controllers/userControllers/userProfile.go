package userController

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"lumos/database"
	"lumos/logger"
	"lumos/middleware"
	"lumos/models"
	"lumos/utils"
	"lumos/validators/userValidator"
)

func loadProfile(db *gorm.DB, user *models.User) error {
	var profile models.UserProfile
	err := db.Where("user_id = ?", user.ID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		profile = models.UserProfile{UserID: user.ID, Timezone: "UTC", NotificationsEnabled: true, EmailNotifications: true}
		err = db.Create(&profile).Error
	}
	if err != nil {
		return err
	}
	user.Profile = &profile
	return nil
}

func GetProfile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if err := loadProfile(database.Database.Db, user); err != nil {
		logger.Error(err, "loading profile failed", map[string]interface{}{"user_id": user.ID})
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch profile!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully!", user)
}

// UpdateProfile applies only the fields present in the body
func UpdateProfile(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	reqData := c.Locals("validatedProfile").(*userValidator.UpdateProfileRequest)
	db := database.Database.Db

	if err := loadProfile(db, user); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update profile!", nil)
	}

	userUpdates := map[string]interface{}{}
	if reqData.FirstName != nil {
		userUpdates["first_name"] = *reqData.FirstName
	}
	if reqData.LastName != nil {
		userUpdates["last_name"] = *reqData.LastName
	}
	if reqData.Bio != nil {
		userUpdates["bio"] = *reqData.Bio
	}
	if reqData.PhoneNumber != nil {
		userUpdates["phone_number"] = *reqData.PhoneNumber
	}
	if reqData.DateOfBirth != nil {
		dob, _ := time.Parse("2006-01-02", *reqData.DateOfBirth)
		userUpdates["date_of_birth"] = dob
	}

	profileUpdates := map[string]interface{}{}
	if reqData.LearningGoals != nil {
		profileUpdates["learning_goals"] = *reqData.LearningGoals
	}
	if reqData.PreferredSubjects != nil {
		profileUpdates["preferred_subjects"] = *reqData.PreferredSubjects
	}
	if reqData.Timezone != nil {
		profileUpdates["timezone"] = *reqData.Timezone
	}
	if reqData.NotificationsEnabled != nil {
		profileUpdates["notifications_enabled"] = *reqData.NotificationsEnabled
	}
	if reqData.EmailNotifications != nil {
		profileUpdates["email_notifications"] = *reqData.EmailNotifications
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if len(userUpdates) > 0 {
			if err := tx.Model(user).Updates(userUpdates).Error; err != nil {
				return err
			}
		}
		if len(profileUpdates) > 0 {
			if err := tx.Model(user.Profile).Updates(profileUpdates).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error(err, "updating profile failed", map[string]interface{}{"user_id": user.ID})
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update profile!", nil)
	}

	var updated models.User
	db.Preload("Profile").First(&updated, user.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully!", updated)
}

func GetUserEnrollments(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	page, limit, offset := utils.PageParams(c, 20)

	query := database.Database.Db.Model(&models.Enrollment{}).Where("student_id = ?", userID)

	var total int64
	query.Count(&total)

	var enrollments []models.Enrollment
	if err := query.Preload("Course").Preload("Course.Category").
		Order("enrolled_at desc").Offset(offset).Limit(limit).
		Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
		"pagination":  utils.Pagination(total, page, limit),
	})
}

// LoginHistory pages through the caller's logins, newest first
func LoginHistory(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	page, limit, offset := utils.PageParams(c, 20)
	query := database.Database.Db.Model(&models.LoginRecord{}).Where("user_id = ?", userID)

	var total int64
	query.Count(&total)

	var records []models.LoginRecord
	if err := query.Order("logged_at desc").Offset(offset).Limit(limit).Find(&records).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch login history!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login History List.", fiber.Map{
		"logins":     records,
		"pagination": utils.Pagination(total, page, limit),
	})
}
