package middleware

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lumos/database"
	"lumos/models"
)

// loadActiveUser fetches the authenticated user and stores it in c.Locals("user")
func loadActiveUser(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
	}

	var user models.User
	err := database.Database.Db.Where("id = ? AND is_active = ?", userID, true).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
		}
		return nil, JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking permissions!", nil)
	}
	c.Locals("user", &user)
	return &user, nil
}

// RequireActiveUser rejects tokens whose user is missing or deactivated
func RequireActiveUser(c *fiber.Ctx) error {
	user, err := loadActiveUser(c)
	if user == nil {
		return err
	}
	return c.Next()
}

// RequireAdmin lets only admins and superusers through
func RequireAdmin(c *fiber.Ctx) error {
	user, err := loadActiveUser(c)
	if user == nil {
		return err
	}
	if !user.IsAdmin() {
		return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
	}
	return c.Next()
}

// RequireCourseManager lets approved teachers, content managers and admins through
func RequireCourseManager(c *fiber.Ctx) error {
	user, err := loadActiveUser(c)
	if user == nil {
		return err
	}
	if !user.CanManageCourses() {
		return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to manage courses!", nil)
	}
	return c.Next()
}

// CurrentUser returns the user stored by a permission middleware, if any
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}
