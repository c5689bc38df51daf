package courseRoutes

import (
	"github.com/gofiber/fiber/v2"

	controllers "lumos/controllers/course"
	"lumos/middleware"
	validators "lumos/validators/course"
)

// SetupAdminCourseRoutes sets up course management for admins and approved teachers
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin")

	adminGroup.Post("/categories", validators.CreateCategory(), middleware.JWTMiddleware, middleware.RequireCourseManager, controllers.AdminCreateCategory)
	adminGroup.Post("/courses", validators.CreateCourse(), middleware.JWTMiddleware, middleware.RequireCourseManager, controllers.AdminCreateCourse)
	adminGroup.Put("/courses/:id", validators.IDParam("id"), validators.CreateCourse(), middleware.JWTMiddleware, middleware.RequireCourseManager, controllers.AdminUpdateCourse)
	adminGroup.Patch("/courses/:id/publish", validators.IDParam("id"), middleware.JWTMiddleware, middleware.RequireCourseManager, controllers.AdminTogglePublish)
	adminGroup.Post("/courses/:id/materials", validators.IDParam("id"), validators.CreateMaterial(), middleware.JWTMiddleware, middleware.RequireCourseManager, controllers.AdminCreateMaterial)

	// Review moderation
	adminGroup.Get("/reviews", middleware.JWTMiddleware, middleware.RequireAdmin, controllers.ListReviewsAdmin)
	adminGroup.Patch("/reviews/:id/approve", validators.IDParam("id"), middleware.JWTMiddleware, middleware.RequireAdmin, controllers.ApproveReview)
}
