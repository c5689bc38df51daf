package superAdminRoutes

import (
	"github.com/gofiber/fiber/v2"

	superAdminController "lumos/controllers/superAdmin"
	"lumos/middleware"
	validators "lumos/validators/course"
)

func SetupSuperAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/users", middleware.JWTMiddleware, middleware.RequireAdmin)

	adminGroup.Get("/", superAdminController.UserList)
	adminGroup.Patch("/:id/approve-teacher", validators.IDParam("id"), superAdminController.ApproveTeacher)
}
