package courseRoutes

import (
	"github.com/gofiber/fiber/v2"

	controllers "lumos/controllers/course"
	"lumos/middleware"
	validators "lumos/validators/course"
)

// SetupCourseRoutes sets up the catalog and the student facing course routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/courses")

	// Catalog
	courseGroup.Get("/", controllers.ListCourses)
	courseGroup.Get("/categories", controllers.ListCategories)

	// Material viewers and progress
	courseGroup.Get("/materials/:id/pdf", validators.IDParam("id"), middleware.JWTMiddleware, middleware.RequireActiveUser, controllers.PdfViewer)
	courseGroup.Get("/materials/:id/video", validators.IDParam("id"), middleware.JWTMiddleware, middleware.RequireActiveUser, controllers.VideoPlayer)
	courseGroup.Post("/materials/:id/progress", validators.IDParam("id"), validators.MarkProgress(), middleware.JWTMiddleware, middleware.RequireActiveUser, controllers.MarkMaterialComplete)

	courseGroup.Get("/:slug", middleware.OptionalJWTMiddleware, controllers.GetCourseDetail)
	courseGroup.Post("/:slug/enroll", middleware.JWTMiddleware, middleware.RequireActiveUser, controllers.EnrollInCourse)

	// Reviews
	courseGroup.Get("/:slug/reviews", controllers.ListReviews)
	courseGroup.Post("/:slug/review", validators.SubmitReview(), middleware.JWTMiddleware, middleware.RequireActiveUser, controllers.SubmitReview)
}
