package paymentController

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jinzhu/now"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"lumos/database"
	"lumos/gateway"
	"lumos/logger"
	"lumos/middleware"
	"lumos/models"
	"lumos/models/payment"
	"lumos/utils"
	paymentValidator "lumos/validators/payment"
)

// AdminListPayments filters by status, method and a search over payment id, username and email
func AdminListPayments(c *fiber.Ctx) error {
	db := database.Database.Db
	page, limit, offset := utils.PageParams(c, 20)

	query := db.Model(&payment.Payment{})
	if status := c.Query("status"); status != "" {
		query = query.Where("payments.status = ?", status)
	}
	if method := c.Query("method"); method != "" {
		query = query.Where("payments.payment_method = ?", method)
	}
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		users := db.Model(&models.User{}).Select("id").
			Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", like, like)
		query = query.Where("LOWER(payments.id) LIKE ? OR payments.user_id IN (?)", like, users)
	}

	var total int64
	query.Count(&total)

	var payments []payment.Payment
	if err := withItems(query).Preload("User").
		Order("payments.created_at desc").Offset(offset).Limit(limit).
		Find(&payments).Error; err != nil {
		logger.Error(err, "listing payments failed", nil)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch payments!", nil)
	}

	rows := make([]fiber.Map, 0, len(payments))
	for i := range payments {
		row := paymentView(&payments[i])
		row["user"] = fiber.Map{"id": payments[i].User.ID, "username": payments[i].User.Username, "email": payments[i].User.Email}
		rows = append(rows, row)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payments fetched successfully!", fiber.Map{
		"payments":   rows,
		"pagination": utils.Pagination(total, page, limit),
	})
}

// AdminUpdatePaymentStatus applies a manual, transition checked status change
func AdminUpdatePaymentStatus(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("paymentId"))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Payment not found!", nil)
	}
	reqData := c.Locals("validatedStatus").(*paymentValidator.UpdateStatusRequest)
	db := database.Database.Db

	var p payment.Payment
	if err := withItems(db).First(&p, "id = ?", id).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Payment not found!", nil)
	}

	next := payment.Status(reqData.Status)
	if !p.Status.CanTransitionTo(next) {
		return middleware.JsonResponse(c, fiber.StatusConflict, false,
			"Cannot change payment status from "+string(p.Status)+" to "+string(next)+".", nil)
	}

	notes := reqData.Notes
	if notes == "" {
		notes = "Status changed to " + string(next) + " by admin"
	}

	switch next {
	case payment.StatusCompleted:
		err = completePayment(db, &p, payment.ActorAdmin, notes, nil)
	case payment.StatusRefunded:
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := payment.Transition(tx, &p, next, payment.ActorAdmin, notes, nil); err != nil {
				return err
			}
			return deactivateEnrollment(tx, &p)
		})
	default:
		err = db.Transaction(func(tx *gorm.DB) error {
			return payment.Transition(tx, &p, next, payment.ActorAdmin, notes, nil)
		})
	}
	if err != nil {
		logger.Error(err, "admin status change failed", map[string]interface{}{"payment_id": p.ID.String()})
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update payment!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment status updated.", paymentView(&p))
}

func AdminListRefunds(c *fiber.Ctx) error {
	db := database.Database.Db
	page, limit, offset := utils.PageParams(c, 20)

	query := db.Model(&payment.Refund{})
	if status := c.Query("status"); status != "" {
		if !payment.RefundStatus(status).IsValid() {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid status filter!", nil)
		}
		query = query.Where("status = ?", status)
	}
	if c.Query("gateway_failed") == "true" {
		query = query.Where("status = ? AND gateway_error <> ''", payment.RefundApproved)
	}

	var total int64
	query.Count(&total)

	var refunds []payment.Refund
	if err := query.Preload("Payment.Course").Preload("Payment.Material.Course").Preload("Payment.User").
		Order("created_at desc").Offset(offset).Limit(limit).
		Find(&refunds).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch refunds!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Refunds fetched successfully!", fiber.Map{
		"refunds":    refunds,
		"pagination": utils.Pagination(total, page, limit),
	})
}

func loadRefund(c *fiber.Ctx) (*payment.Refund, error) {
	var refund payment.Refund
	if err := database.Database.Db.
		Preload("Payment.Course").Preload("Payment.Material.Course").Preload("Payment.User").
		First(&refund, c.Locals("id").(uint)).Error; err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Refund not found!", nil)
	}
	return &refund, nil
}

func refundConflict(c *fiber.Ctx, refund *payment.Refund, next payment.RefundStatus) error {
	return middleware.JsonResponse(c, fiber.StatusConflict, false,
		"Cannot move refund from "+string(refund.Status)+" to "+string(next)+".", nil)
}

func notifyRefund(refund *payment.Refund) {
	user := refund.Payment.User
	utils.SendRefundEmail(user.Email, user.FullName(), refund.Payment.ItemName(), string(refund.Status))
}

// AdminApproveRefund approves a requested refund, marks the payment refunded and closes the enrollment
func AdminApproveRefund(c *fiber.Ctx) error {
	refund, err := loadRefund(c)
	if refund == nil {
		return err
	}
	admin := middleware.CurrentUser(c)

	if err := refund.TransitionTo(payment.RefundApproved, time.Now()); err != nil {
		return refundConflict(c, refund, payment.RefundApproved)
	}
	p := &refund.Payment
	if p.Status != payment.StatusCompleted && p.Status != payment.StatusRefunded {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Payment is "+string(p.Status)+" and cannot be refunded.", nil)
	}

	refund.ProcessedByID = &admin.ID
	err = database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(refund).Select("status", "processed_by_id", "updated_at").Updates(refund).Error; err != nil {
			return err
		}
		if p.Status == payment.StatusCompleted {
			if err := payment.Transition(tx, p, payment.StatusRefunded, payment.ActorAdmin, "Refund approved", nil); err != nil {
				return err
			}
		}
		return deactivateEnrollment(tx, p)
	})
	if err != nil {
		logger.Error(err, "approving refund failed", map[string]interface{}{"refund_id": refund.ID})
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to approve refund!", nil)
	}

	notifyRefund(refund)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Refund approved.", refund)
}

func AdminRejectRefund(c *fiber.Ctx) error {
	refund, err := loadRefund(c)
	if refund == nil {
		return err
	}
	admin := middleware.CurrentUser(c)

	if err := refund.TransitionTo(payment.RefundRejected, time.Now()); err != nil {
		return refundConflict(c, refund, payment.RefundRejected)
	}
	refund.ProcessedByID = &admin.ID
	if err := database.Database.Db.Model(refund).Select("status", "processed_by_id", "updated_at").Updates(refund).Error; err != nil {
		logger.Error(err, "rejecting refund failed", map[string]interface{}{"refund_id": refund.ID})
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reject refund!", nil)
	}

	notifyRefund(refund)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Refund rejected.", refund)
}

// recordGatewayFailure keeps the failed attempt on the refund and in the payment history.
// The payment is already refunded at this point, so both say the money is still owed.
func recordGatewayFailure(db *gorm.DB, refund *payment.Refund, cause error) {
	refund.GatewayError = cause.Error()
	if err := db.Model(refund).Update("gateway_error", refund.GatewayError).Error; err != nil {
		logger.Error(err, "saving refund gateway error failed", map[string]interface{}{"refund_id": refund.ID})
	}
	note := "Gateway refund failed, money not yet returned: " + refund.GatewayError
	if err := payment.RecordHistory(db, &refund.Payment, payment.ActorAdmin, note, nil); err != nil {
		logger.Error(err, "recording refund failure failed", map[string]interface{}{"refund_id": refund.ID})
	}
}

// AdminProcessRefund returns the money through the gateway. A gateway failure leaves the refund approved.
func AdminProcessRefund(c *fiber.Ctx) error {
	refund, err := loadRefund(c)
	if refund == nil {
		return err
	}
	admin := middleware.CurrentUser(c)
	db := database.Database.Db
	p := &refund.Payment

	if !refund.Status.CanTransitionTo(payment.RefundProcessed) {
		return refundConflict(c, refund, payment.RefundProcessed)
	}

	var payload datatypes.JSON
	if p.Method == payment.MethodPaypal {
		if p.PaypalPaymentID == "" {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Payment has no PayPal reference to refund.", nil)
		}
		gw, err := gateway.ForMethod(string(p.Method))
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Payment method unavailable.", nil)
		}
		result, err := gw.RefundPayment(c.UserContext(), p.PaypalPaymentID, refund.RefundAmount, p.Currency)
		if err != nil {
			logger.Error(err, "gateway refund failed", map[string]interface{}{"refund_id": refund.ID})
			recordGatewayFailure(db, refund, err)
			return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Refund processing failed at the gateway.", fiber.Map{
				"refund_status":  refund.Status,
				"payment_status": p.Status,
				"gateway_error":  refund.GatewayError,
			})
		}
		refund.GatewayRefundID = result.RefundID
		payload = rawPayload(result.Raw)
	}

	if err := refund.TransitionTo(payment.RefundProcessed, time.Now()); err != nil {
		return refundConflict(c, refund, payment.RefundProcessed)
	}
	refund.ProcessedByID = &admin.ID
	refund.GatewayError = ""
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(refund).
			Select("status", "processed_by_id", "processed_at", "gateway_refund_id", "gateway_error", "updated_at").
			Updates(refund).Error; err != nil {
			return err
		}
		return payment.RecordHistory(tx, p, payment.ActorAdmin, "Refund processed", payload)
	})
	if err != nil {
		logger.Error(err, "saving processed refund failed", map[string]interface{}{"refund_id": refund.ID})
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process refund!", nil)
	}

	notifyRefund(refund)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Refund processed.", refund)
}

// AdminStats reports completed revenue, overall and this month, plus payment and refund counts
func AdminStats(c *fiber.Ctx) error {
	db := database.Database.Db
	completed := func() *gorm.DB {
		return db.Model(&payment.Payment{}).Where("status = ?", payment.StatusCompleted)
	}

	totalRevenue, err := payment.SumAmount(completed())
	if err != nil {
		logger.Error(err, "revenue query failed", nil)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch stats!", nil)
	}
	monthRevenue, err := payment.SumAmount(completed().Where("completed_at >= ?", now.BeginningOfMonth()))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch stats!", nil)
	}
	byStatus, err := payment.CountByStatus(db.Model(&payment.Payment{}))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch stats!", nil)
	}

	var pendingRefunds, unpaidRefunds int64
	db.Model(&payment.Refund{}).Where("status = ?", payment.RefundRequested).Count(&pendingRefunds)
	db.Model(&payment.Refund{}).Where("status = ?", payment.RefundApproved).Count(&unpaidRefunds)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Stats fetched successfully!", fiber.Map{
		"total_revenue":   totalRevenue,
		"monthly_revenue": monthRevenue,
		"payments":        byStatus,
		"pending_refunds": pendingRefunds,
		"unpaid_refunds":  unpaidRefunds, // approved, money not yet returned
	})
}
