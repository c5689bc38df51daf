package superAdminController

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"lumos/database"
	"lumos/logger"
	"lumos/middleware"
	"lumos/models"
	"lumos/utils"
)

// UserList pages through users, optionally filtered by role and a username/email search
func UserList(c *fiber.Ctx) error {
	page, limit, offset := utils.PageParams(c, 20)

	query := database.Database.Db.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		if !models.IsValidRole(role) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid role filter!", nil)
		}
		query = query.Where("role = ?", role)
	}
	if c.Query("pending_teachers") == "true" {
		query = query.Where("role = ? AND is_teacher_approved = ?", models.RoleTeacher, false)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch user list!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User List.", fiber.Map{
		"users":      users,
		"pagination": utils.Pagination(total, page, limit),
	})
}

// ApproveTeacher lets a teacher account start managing courses
func ApproveTeacher(c *fiber.Ctx) error {
	db := database.Database.Db

	var user models.User
	if err := db.First(&user, c.Locals("id").(uint)).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}
	if user.Role != models.RoleTeacher {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "User is not a teacher!", nil)
	}
	if user.IsTeacherApproved {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Teacher is already approved.", user)
	}

	if err := db.Model(&user).Update("is_teacher_approved", true).Error; err != nil {
		logger.Error(err, "approving teacher failed", map[string]interface{}{"user_id": user.ID})
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to approve teacher!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Teacher approved successfully!", user)
}
