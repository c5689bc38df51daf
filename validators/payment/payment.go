package paymentValidator

import (
	"github.com/gofiber/fiber/v2"

	"lumos/middleware"
	"lumos/models/payment"
	"lumos/validators/shared"
)

type CreatePaymentRequest struct {
	ItemType      string `json:"item_type" validate:"required"`
	ItemID        uint   `json:"item_id" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required"`
}

type RefundRequest struct {
	Reason string `json:"reason" validate:"required,notblank,max=2000"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending completed failed refunded"`
	Notes  string `json:"notes" validate:"max=2000"`
}

// CreatePayment validates the checkout submission
func CreatePayment() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreatePaymentRequest)
		if ok, err := shared.BindBody(c, reqData, "validatedPayment"); !ok {
			return err
		}

		if reqData.ItemType != payment.ItemCourse && reqData.ItemType != payment.ItemMaterial {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid item type", nil)
		}
		if !payment.IsValidMethod(reqData.PaymentMethod) {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid payment method", nil)
		}
		return c.Next()
	}
}

func RequestRefund() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := shared.BindBody(c, new(RefundRequest), "validatedRefund"); !ok {
			return err
		}
		return c.Next()
	}
}

func UpdateStatus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if ok, err := shared.BindBody(c, new(UpdateStatusRequest), "validatedStatus"); !ok {
			return err
		}
		return c.Next()
	}
}
