package paymentRoutes

import (
	"github.com/gofiber/fiber/v2"

	"lumos/config"
	paymentController "lumos/controllers/payment"
	"lumos/middleware"
	validators "lumos/validators/course"
	paymentValidator "lumos/validators/payment"
)

func SetupPaymentRoutes(app *fiber.App) {
	paymentGroup := app.Group("/payments")

	// Gateway notifications carry no user token
	paymentGroup.Post("/webhook/paypal", paymentController.PaypalWebhook)

	paymentGroup.Get("/checkout/:itemType/:itemId", middleware.JWTMiddleware, middleware.RequireActiveUser, paymentController.Checkout)
	paymentGroup.Post("/create", middleware.RateLimit(config.AppConfig.RateLimitMax), paymentValidator.CreatePayment(), middleware.JWTMiddleware, middleware.RequireActiveUser, paymentController.CreatePayment)
	paymentGroup.Get("/success/:paymentId", middleware.JWTMiddleware, middleware.RequireActiveUser, paymentController.PaymentSuccess)
	paymentGroup.Get("/cancel/:paymentId", middleware.JWTMiddleware, middleware.RequireActiveUser, paymentController.PaymentCancel)
	paymentGroup.Get("/history", middleware.JWTMiddleware, middleware.RequireActiveUser, paymentController.PaymentHistory)
	paymentGroup.Get("/:paymentId", middleware.JWTMiddleware, middleware.RequireActiveUser, paymentController.GetPayment)
	paymentGroup.Post("/:paymentId/refund", paymentValidator.RequestRefund(), middleware.JWTMiddleware, middleware.RequireActiveUser, paymentController.RequestRefund)

	// Admin routes
	adminGroup := app.Group("/admin")
	adminGroup.Get("/payments", middleware.JWTMiddleware, middleware.RequireAdmin, paymentController.AdminListPayments)
	adminGroup.Patch("/payments/:paymentId/status", paymentValidator.UpdateStatus(), middleware.JWTMiddleware, middleware.RequireAdmin, paymentController.AdminUpdatePaymentStatus)
	adminGroup.Get("/refunds", middleware.JWTMiddleware, middleware.RequireAdmin, paymentController.AdminListRefunds)
	adminGroup.Patch("/refunds/:id/approve", validators.IDParam("id"), middleware.JWTMiddleware, middleware.RequireAdmin, paymentController.AdminApproveRefund)
	adminGroup.Patch("/refunds/:id/reject", validators.IDParam("id"), middleware.JWTMiddleware, middleware.RequireAdmin, paymentController.AdminRejectRefund)
	adminGroup.Patch("/refunds/:id/process", validators.IDParam("id"), middleware.JWTMiddleware, middleware.RequireAdmin, paymentController.AdminProcessRefund)
	adminGroup.Get("/stats", middleware.JWTMiddleware, middleware.RequireAdmin, paymentController.AdminStats)
}
