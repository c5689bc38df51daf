package authRoutes

import (
	"github.com/gofiber/fiber/v2"

	"lumos/config"
	authControllers "lumos/controllers/auth"
	"lumos/middleware"
	authValidators "lumos/validators/auth"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth", middleware.RateLimit(config.AppConfig.RateLimitMax))

	authGroup.Post("/signup", authValidators.Signup(), authControllers.Signup)
	authGroup.Post("/login", authValidators.Login(), authControllers.Login)
}
