package paymentController

import (
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lumos/database"
	"lumos/gateway"
	"lumos/logger"
	"lumos/middleware"
	"lumos/models/payment"
)

type webhookEvent struct {
	ID        string `json:"id"`
	EventType string `json:"event_type"`
	Resource  struct {
		ID            string `json:"id"`
		State         string `json:"state"`
		ParentPayment string `json:"parent_payment"`
	} `json:"resource"`
}

// PaypalWebhook receives gateway notifications. Each event id is processed once.
// A failed event answers 500 and is processed again when the gateway redelivers it.
func PaypalWebhook(c *fiber.Ctx) error {
	body := c.Body()

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil || event.ID == "" || event.EventType == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid webhook payload!", nil)
	}

	gw, err := gateway.ForMethod(string(payment.MethodPaypal))
	if err != nil {
		logger.Error(err, "webhook received without gateway", nil)
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Payment gateway unavailable.", nil)
	}
	headers := make(map[string]string, len(gateway.WebhookHeaders))
	for _, name := range gateway.WebhookHeaders {
		headers[name] = c.Get(name)
	}
	verified, err := gw.VerifyWebhook(c.UserContext(), headers, body)
	if err != nil {
		logger.Error(err, "webhook verification failed", map[string]interface{}{"event_id": event.ID})
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Could not verify webhook.", nil)
	}
	if !verified {
		logger.Warn("rejected webhook %s with invalid signature", event.ID)
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid webhook signature!", nil)
	}

	db := database.Database.Db
	var stored payment.WebhookEvent
	err = db.Where("event_id = ?", event.ID).First(&stored).Error
	switch {
	case err == nil && stored.Processed:
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Event already received.", fiber.Map{"event_id": event.ID})
	case err == nil:
		// an earlier delivery failed, so this one is a retry
	case errors.Is(err, gorm.ErrRecordNotFound):
		stored = payment.WebhookEvent{
			EventID:    event.ID,
			EventType:  event.EventType,
			ResourceID: event.Resource.ParentPayment,
			Payload:    datatypes.JSON(body),
		}
		if err := db.Create(&stored).Error; err != nil {
			// a concurrent delivery of the same event won the insert
			if db.Where("event_id = ?", event.ID).First(&stored).Error == nil {
				return middleware.JsonResponse(c, fiber.StatusOK, true, "Event already received.", fiber.Map{"event_id": event.ID})
			}
			logger.Error(err, "storing webhook event failed", map[string]interface{}{"event_id": event.ID})
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store event!", nil)
		}
	default:
		logger.Error(err, "loading webhook event failed", map[string]interface{}{"event_id": event.ID})
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store event!", nil)
	}

	note, err := applyWebhookEvent(db, event, datatypes.JSON(body))
	if err != nil {
		// left unprocessed so the gateway's retry runs it again
		logger.Error(err, "processing webhook event failed", map[string]interface{}{"event_id": event.ID})
		db.Model(&stored).Update("note", "error: "+err.Error())
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process event!", fiber.Map{"event_id": event.ID})
	}

	processedAt := time.Now()
	db.Model(&stored).Updates(map[string]interface{}{
		"processed":    true,
		"note":         note,
		"processed_at": processedAt,
	})

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Webhook processed.", fiber.Map{
		"event_id": event.ID,
		"note":     note,
	})
}

// applyWebhookEvent moves the referenced payment and returns a note describing what happened
func applyWebhookEvent(db *gorm.DB, event webhookEvent, payload datatypes.JSON) (string, error) {
	var next payment.Status
	var from payment.Status
	switch event.EventType {
	case payment.EventSaleCompleted:
		from, next = payment.StatusPending, payment.StatusCompleted
	case payment.EventSaleDenied:
		from, next = payment.StatusPending, payment.StatusFailed
	case payment.EventSaleRefunded:
		from, next = payment.StatusCompleted, payment.StatusRefunded
	default:
		return "ignored event type " + event.EventType, nil
	}

	if event.Resource.ParentPayment == "" {
		return "event has no parent payment", nil
	}
	var p payment.Payment
	err := withItems(db).Where("paypal_payment_id = ?", event.Resource.ParentPayment).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "no payment for " + event.Resource.ParentPayment, nil
	}
	if err != nil {
		return "", err
	}
	if p.Status != from {
		return "payment already " + string(p.Status), nil
	}

	switch next {
	case payment.StatusCompleted:
		err = completePayment(db, &p, payment.ActorGateway, "Payment completed via PayPal webhook", payload)
	case payment.StatusFailed:
		err = db.Transaction(func(tx *gorm.DB) error {
			return payment.Transition(tx, &p, next, payment.ActorGateway, "Payment denied by PayPal", payload)
		})
	case payment.StatusRefunded:
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := payment.Transition(tx, &p, next, payment.ActorGateway, "Payment refunded via PayPal", payload); err != nil {
				return err
			}
			return deactivateEnrollment(tx, &p)
		})
	}
	if errors.Cause(err) == payment.ErrInvalidTransition {
		return "payment no longer " + string(from), nil
	}
	if err != nil {
		return "", err
	}
	return "payment " + p.ID.String() + " " + string(next), nil
}
