package paymentController

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lumos/database"
	"lumos/logger"
	"lumos/middleware"
	"lumos/models"
	"lumos/models/payment"
	paymentValidator "lumos/validators/payment"
)

// deactivateEnrollment closes the enrollment bought by a refunded course payment
func deactivateEnrollment(tx *gorm.DB, p *payment.Payment) error {
	if p.CourseID == nil {
		return nil
	}
	return tx.Model(&models.Enrollment{}).
		Where("student_id = ? AND course_id = ?", p.UserID, *p.CourseID).
		Update("is_active", false).Error
}

// RequestRefund opens the single refund a completed payment may have
func RequestRefund(c *fiber.Ctx) error {
	p, err := loadOwnPayment(c)
	if p == nil {
		return err
	}
	reqData := c.Locals("validatedRefund").(*paymentValidator.RefundRequest)
	db := database.Database.Db

	if p.Status != payment.StatusCompleted {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Only completed payments can be refunded.", nil)
	}

	var count int64
	db.Model(&payment.Refund{}).Where("payment_id = ?", p.ID).Count(&count)
	if count > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "A refund has already been requested for this payment.", nil)
	}

	refund := payment.Refund{
		PaymentID:    p.ID,
		Reason:       reqData.Reason,
		Status:       payment.RefundRequested,
		RefundAmount: p.Amount,
	}
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&refund).Error; err != nil {
			return err
		}
		return payment.RecordHistory(tx, p, payment.ActorUser, "Refund requested: "+reqData.Reason, nil)
	})
	if err != nil {
		logger.Error(err, "creating refund failed", map[string]interface{}{"payment_id": p.ID.String()})
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to request refund!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Refund requested. We will review it shortly.", refund)
}
