package userProfileRoutes

import (
	"github.com/gofiber/fiber/v2"

	controllers "lumos/controllers/course"
	userProfileController "lumos/controllers/userControllers"
	"lumos/middleware"
	userPorfileValidator "lumos/validators/userValidator"
)

func SetupUserRoutes(app *fiber.App) {
	app.Get("/home", userProfileController.Home)
	app.Get("/certificates/:certificateId/verify", controllers.VerifyCertificate)

	userGroup := app.Group("/user", middleware.JWTMiddleware, middleware.RequireActiveUser)

	userGroup.Get("/profile", userProfileController.GetProfile)
	userGroup.Put("/profile", userPorfileValidator.UpdateProfile(), userProfileController.UpdateProfile)
	userGroup.Get("/login-history", userProfileController.LoginHistory)
	userGroup.Get("/dashboard", userProfileController.Dashboard)
	userGroup.Get("/enrollments", userProfileController.GetUserEnrollments)
	userGroup.Get("/certificates", controllers.GetUserCertificates)
}
