package paymentController

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"lumos/config"
	"lumos/database"
	"lumos/gateway"
	"lumos/logger"
	"lumos/middleware"
	"lumos/models"
	"lumos/models/payment"
	paymentValidator "lumos/validators/payment"
)

// purchasable is a course or a single material as seen by checkout
type purchasable struct {
	ItemType   string
	CourseID   *uint
	MaterialID *uint
	Name       string
	Amount     decimal.Decimal
	Course     models.Course
	Material   *models.Material
}

func (p purchasable) summary() fiber.Map {
	out := fiber.Map{
		"item_type": p.ItemType,
		"name":      p.Name,
		"course": fiber.Map{
			"id":    p.Course.ID,
			"title": p.Course.Title,
			"slug":  p.Course.Slug,
		},
	}
	if p.Material != nil {
		out["material"] = fiber.Map{
			"id":            p.Material.ID,
			"title":         p.Material.Title,
			"material_type": p.Material.MaterialType,
		}
	}
	return out
}

// findPurchasable loads a published course or a material of a published course
func findPurchasable(db *gorm.DB, itemType string, itemID uint) (*purchasable, error) {
	switch itemType {
	case payment.ItemCourse:
		var course models.Course
		if err := db.Where("id = ? AND is_published = ?", itemID, true).First(&course).Error; err != nil {
			return nil, err
		}
		return &purchasable{
			ItemType: itemType,
			CourseID: &course.ID,
			Name:     course.Title,
			Amount:   course.Price,
			Course:   course,
		}, nil
	case payment.ItemMaterial:
		var material models.Material
		if err := db.First(&material, itemID).Error; err != nil {
			return nil, err
		}
		if err := db.Where("id = ? AND is_published = ?", material.CourseID, true).First(&material.Course).Error; err != nil {
			return nil, err
		}
		return &purchasable{
			ItemType:   itemType,
			MaterialID: &material.ID,
			Name:       material.Course.Title + " - " + material.Title,
			Amount:     material.Price,
			Course:     material.Course,
			Material:   &material,
		}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// Checkout summarizes an item before the buyer picks a payment method
func Checkout(c *fiber.Ctx) error {
	itemType := c.Params("itemType")
	if itemType != payment.ItemCourse && itemType != payment.ItemMaterial {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid item type.", nil)
	}
	itemID, err := strconv.Atoi(c.Params("itemId"))
	if err != nil || itemID <= 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Item not found!", nil)
	}

	item, err := findPurchasable(database.Database.Db, itemType, uint(itemID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Item not found!", nil)
	}
	if !item.Amount.IsPositive() {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "This item is free.", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Checkout ready.", fiber.Map{
		"item":             item.summary(),
		"amount":           item.Amount,
		"currency":         config.AppConfig.DefaultCurrency,
		"paypal_client_id": config.AppConfig.PaypalClientID,
		"payment_methods":  []payment.Method{payment.MethodPaypal, payment.MethodIntersend},
	})
}

// CreatePayment opens a pending payment and hands the buyer over to the gateway
func CreatePayment(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	reqData := c.Locals("validatedPayment").(*paymentValidator.CreatePaymentRequest)
	db := database.Database.Db

	item, err := findPurchasable(db, reqData.ItemType, reqData.ItemID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Item not found!", nil)
	}
	if !item.Amount.IsPositive() {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "This item is free.", nil)
	}

	if payment.Method(reqData.PaymentMethod) == payment.MethodIntersend {
		return middleware.JsonResponse(c, fiber.StatusNotImplemented, false, "InterSend not implemented yet", nil)
	}
	gw, err := gateway.ForMethod(reqData.PaymentMethod)
	if err != nil {
		logger.Error(err, "no gateway for payment method", map[string]interface{}{"method": reqData.PaymentMethod})
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Payment method unavailable.", nil)
	}

	p := payment.Payment{
		UserID:     userID,
		CourseID:   item.CourseID,
		MaterialID: item.MaterialID,
		Amount:     item.Amount,
		Currency:   config.AppConfig.DefaultCurrency,
		Method:     payment.Method(reqData.PaymentMethod),
		Status:     payment.StatusPending,
	}

	tx := db.Begin()
	if err := tx.Create(&p).Error; err != nil {
		tx.Rollback()
		logger.Error(err, "creating payment failed", nil)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create payment!", nil)
	}
	if err := payment.RecordHistory(tx, &p, payment.ActorUser, "Payment initiated", nil); err != nil {
		tx.Rollback()
		logger.Error(err, "recording payment history failed", nil)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create payment!", nil)
	}
	tx.Commit()

	base := config.AppConfig.FrontendURL
	created, err := gw.CreatePayment(c.UserContext(), gateway.Order{
		Reference:   p.ID.String(),
		Description: item.Name,
		Amount:      p.Amount,
		Currency:    p.Currency,
		ReturnURL:   fmt.Sprintf("%s/payments/success/%s", base, p.ID),
		CancelURL:   fmt.Sprintf("%s/payments/cancel/%s", base, p.ID),
	})
	if err != nil {
		logger.Error(err, "gateway payment creation failed", map[string]interface{}{"payment_id": p.ID.String()})
		failErr := db.Transaction(func(tx *gorm.DB) error {
			return payment.Transition(tx, &p, payment.StatusFailed, payment.ActorGateway, "PayPal payment creation failed", nil)
		})
		if failErr != nil {
			logger.Error(failErr, "marking payment failed", map[string]interface{}{"payment_id": p.ID.String()})
		}
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Payment creation failed", nil)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&p).Update("paypal_payment_id", created.GatewayID).Error; err != nil {
			return err
		}
		return payment.RecordHistory(tx, &p, payment.ActorGateway, "PayPal payment created", rawPayload(created.Raw))
	})
	if err != nil {
		logger.Error(err, "storing gateway payment id failed", map[string]interface{}{"payment_id": p.ID.String()})
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create payment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Payment created. Redirect to approve.", fiber.Map{
		"approval_url": created.ApprovalURL,
		"payment_id":   p.ID,
	})
}
