package paymentController

import (
	"encoding/json"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lumos/database"
	"lumos/gateway"
	"lumos/logger"
	"lumos/middleware"
	"lumos/models"
	"lumos/models/payment"
	"lumos/utils"
)

func rawPayload(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 || !json.Valid(raw) {
		return nil
	}
	return datatypes.JSON(raw)
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Course").Preload("Material.Course")
}

// loadOwnPayment finds the payment in the route that belongs to the caller
func loadOwnPayment(c *fiber.Ctx) (*payment.Payment, error) {
	id, err := uuid.Parse(c.Params("paymentId"))
	if err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Payment not found!", nil)
	}
	var p payment.Payment
	if err := withItems(database.Database.Db).
		Where("id = ? AND user_id = ?", id, c.Locals("userId").(uint)).
		First(&p).Error; err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Payment not found!", nil)
	}
	return &p, nil
}

// redirectPath is where the buyer goes after a completed purchase
func redirectPath(p *payment.Payment) string {
	switch {
	case p.Course != nil:
		return "/courses/" + p.Course.Slug
	case p.Material != nil:
		return fmt.Sprintf("/courses/materials/%d/%s", p.Material.ID, p.Material.MaterialType)
	}
	return "/payments/history"
}

func paymentView(p *payment.Payment) fiber.Map {
	return fiber.Map{
		"payment":   p,
		"item_name": p.ItemName(),
		"item_type": p.ItemType(),
		"redirect":  redirectPath(p),
	}
}

func courseIDOf(p *payment.Payment) uint {
	if p.CourseID != nil {
		return *p.CourseID
	}
	if p.Material != nil {
		return p.Material.CourseID
	}
	return 0
}

// completePayment marks a pending payment completed and enrolls the buyer in the
// course it belongs to. Emails go out after the transaction commits.
func completePayment(db *gorm.DB, p *payment.Payment, actor, notes string, payload datatypes.JSON) error {
	var enrollment *models.Enrollment
	var created bool
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := payment.Transition(tx, p, payment.StatusCompleted, actor, notes, payload); err != nil {
			return err
		}
		if courseID := courseIDOf(p); courseID != 0 {
			var err error
			enrollment, created, err = utils.GetOrCreateEnrollment(tx, p.UserID, courseID)
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	var user models.User
	if err := db.First(&user, p.UserID).Error; err == nil {
		utils.SendPaymentReceiptEmail(user.Email, user.FullName(), p.ItemName(), p.Amount.StringFixed(2), p.Currency, p.ID.String())
		if created && enrollment != nil {
			var course models.Course
			if db.First(&course, enrollment.CourseID).Error == nil {
				utils.SendEnrollmentEmail(user.Email, user.FullName(), course.Title)
			}
		}
	}
	return nil
}

// failPayment moves a pending payment to failed, logging instead of returning errors
func failPayment(db *gorm.DB, p *payment.Payment, actor, notes string, payload datatypes.JSON) {
	err := db.Transaction(func(tx *gorm.DB) error {
		return payment.Transition(tx, p, payment.StatusFailed, actor, notes, payload)
	})
	if err != nil {
		logger.Error(err, "marking payment failed", map[string]interface{}{"payment_id": p.ID.String()})
	}
}

// PaymentSuccess is hit when the buyer returns from the gateway approval page
func PaymentSuccess(c *fiber.Ctx) error {
	p, err := loadOwnPayment(c)
	if p == nil {
		return err
	}
	db := database.Database.Db

	if p.Status == payment.StatusCompleted {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment already completed.", paymentView(p))
	}

	payerID := c.Query("PayerID")
	if payerID == "" || p.PaypalPaymentID == "" || p.Status != payment.StatusPending {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment not completed.", paymentView(p))
	}

	gw, err := gateway.ForMethod(string(p.Method))
	if err != nil {
		logger.Error(err, "no gateway for payment", map[string]interface{}{"payment_id": p.ID.String()})
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Payment method unavailable.", nil)
	}

	executed, err := gw.ExecutePayment(c.UserContext(), p.PaypalPaymentID, payerID)
	if err != nil {
		logger.Error(err, "gateway payment execution failed", map[string]interface{}{"payment_id": p.ID.String()})
		failPayment(db, p, payment.ActorGateway, "PayPal payment execution failed", nil)
		return middleware.JsonResponse(c, fiber.StatusPaymentRequired, false, "Payment execution failed.", paymentView(p))
	}

	err = completePayment(db, p, payment.ActorGateway, "Payment completed successfully", rawPayload(executed.Raw))
	if errors.Cause(err) == payment.ErrInvalidTransition {
		// the webhook moved the payment while the gateway was executing it
		if p, err = loadOwnPayment(c); p == nil {
			return err
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment already "+string(p.Status)+".", paymentView(p))
	}
	if err != nil {
		logger.Error(err, "completing payment failed", map[string]interface{}{"payment_id": p.ID.String()})
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to complete payment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment completed successfully!", paymentView(p))
}

// PaymentCancel is hit when the buyer abandons the gateway approval page
func PaymentCancel(c *fiber.Ctx) error {
	p, err := loadOwnPayment(c)
	if p == nil {
		return err
	}
	if p.Status != payment.StatusPending {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Only pending payments can be cancelled.", paymentView(p))
	}

	err = database.Database.Db.Transaction(func(tx *gorm.DB) error {
		return payment.Transition(tx, p, payment.StatusFailed, payment.ActorUser, "Payment cancelled by user", nil)
	})
	if err != nil {
		logger.Error(err, "cancelling payment failed", map[string]interface{}{"payment_id": p.ID.String()})
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to cancel payment!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment cancelled.", paymentView(p))
}

// PaymentHistory lists the caller's payments, newest first
func PaymentHistory(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	page, limit, offset := utils.PageParams(c, 20)
	db := database.Database.Db

	query := db.Model(&payment.Payment{}).Where("user_id = ?", userID)
	var total int64
	query.Count(&total)

	var payments []payment.Payment
	if err := withItems(query).Order("created_at desc").Offset(offset).Limit(limit).Find(&payments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch payments!", nil)
	}

	rows := make([]fiber.Map, 0, len(payments))
	for i := range payments {
		rows = append(rows, paymentView(&payments[i]))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payments fetched successfully!", fiber.Map{
		"payments":   rows,
		"pagination": utils.Pagination(total, page, limit),
	})
}

// GetPayment shows one of the caller's payments with its history, newest first
func GetPayment(c *fiber.Ctx) error {
	p, err := loadOwnPayment(c)
	if p == nil {
		return err
	}
	database.Database.Db.Where("payment_id = ?", p.ID).Order("created_at desc, id desc").Find(&p.History)

	view := paymentView(p)
	var refund payment.Refund
	if database.Database.Db.Where("payment_id = ?", p.ID).First(&refund).Error == nil {
		view["refund"] = refund
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment fetched successfully!", view)
}
