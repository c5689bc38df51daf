package paymentController_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lumos/models/payment"
	"lumos/testutil"
)

func webhookBody(eventID, eventType, parent string) string {
	return fmt.Sprintf(`{"id":%q,"event_type":%q,"resource":{"id":"SALE-1","state":"completed","parent_payment":%q}}`,
		eventID, eventType, parent)
}

func TestPaypalWebhookCompletesPayment(t *testing.T) {
	s := newShop(t)
	id := s.buy(t, s.student, payment.ItemCourse, s.course.ID)

	body := webhookBody("WH-1", payment.EventSaleCompleted, "PAY-"+id)
	resp := testutil.Do(t, s.app, http.MethodPost, "/payments/webhook/paypal", body, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Message)
	assert.Equal(t, "payment "+id+" completed", resp.DataMap(t)["note"])

	p := s.payment(t, id)
	assert.Equal(t, payment.StatusCompleted, p.Status)
	assert.Equal(t, payment.ActorGateway, p.History[len(p.History)-1].ActorType)
	assert.True(t, s.enrolled(s.student.ID, s.course.ID))

	var event payment.WebhookEvent
	require.NoError(t, s.db.Where("event_id = ?", "WH-1").First(&event).Error)
	assert.True(t, event.Processed)
	assert.NotNil(t, event.ProcessedAt)

	// redelivery is acknowledged without touching the payment again
	resp = testutil.Do(t, s.app, http.MethodPost, "/payments/webhook/paypal", body, "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Event already received.", resp.Message)
	assert.Len(t, s.payment(t, id).History, len(p.History))

	var count int64
	s.db.Model(&payment.WebhookEvent{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestPaypalWebhookRetriesFailedEvent(t *testing.T) {
	s := newShop(t)
	id := s.buy(t, s.student, payment.ItemCourse, s.course.ID)

	failures := 1
	require.NoError(t, s.db.Callback().Create().Before("gorm:create").Register("test:fail_enrollment", func(tx *gorm.DB) {
		if failures > 0 && tx.Statement.Schema != nil && tx.Statement.Schema.Table == "enrollments" {
			failures--
			_ = tx.AddError(errors.New("transient db error"))
		}
	}))

	body := webhookBody("WH-9", payment.EventSaleCompleted, "PAY-"+id)
	resp := testutil.Do(t, s.app, http.MethodPost, "/payments/webhook/paypal", body, "")
	require.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.Equal(t, payment.StatusPending, s.payment(t, id).Status)
	assert.False(t, s.enrolled(s.student.ID, s.course.ID))

	var event payment.WebhookEvent
	require.NoError(t, s.db.Where("event_id = ?", "WH-9").First(&event).Error)
	assert.False(t, event.Processed)
	assert.Contains(t, event.Note, "transient db error")

	// the gateway redelivers the same event
	resp = testutil.Do(t, s.app, http.MethodPost, "/payments/webhook/paypal", body, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Message)
	assert.Equal(t, "Webhook processed.", resp.Message)
	assert.Equal(t, payment.StatusCompleted, s.payment(t, id).Status)
	assert.True(t, s.enrolled(s.student.ID, s.course.ID))

	require.NoError(t, s.db.Where("event_id = ?", "WH-9").First(&event).Error)
	assert.True(t, event.Processed)

	var count int64
	s.db.Model(&payment.WebhookEvent{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestPaypalWebhookDeniedAndRefunded(t *testing.T) {
	s := newShop(t)
	denied := s.buy(t, s.student, payment.ItemCourse, s.course.ID)
	resp := testutil.Do(t, s.app, http.MethodPost, "/payments/webhook/paypal",
		webhookBody("WH-2", payment.EventSaleDenied, "PAY-"+denied), "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, payment.StatusFailed, s.payment(t, denied).Status)

	paid := s.buy(t, s.student, payment.ItemCourse, s.course.ID)
	testutil.Do(t, s.app, http.MethodPost, "/payments/webhook/paypal",
		webhookBody("WH-3", payment.EventSaleCompleted, "PAY-"+paid), "")
	require.True(t, s.enrolled(s.student.ID, s.course.ID))

	resp = testutil.Do(t, s.app, http.MethodPost, "/payments/webhook/paypal",
		webhookBody("WH-4", payment.EventSaleRefunded, "PAY-"+paid), "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, payment.StatusRefunded, s.payment(t, paid).Status)
	assert.False(t, s.enrolled(s.student.ID, s.course.ID))

	// a completion for an already refunded payment is only noted
	resp = testutil.Do(t, s.app, http.MethodPost, "/payments/webhook/paypal",
		webhookBody("WH-5", payment.EventSaleCompleted, "PAY-"+paid), "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "payment already refunded", resp.DataMap(t)["note"])
}

func TestPaypalWebhookIgnoredEvents(t *testing.T) {
	s := newShop(t)

	resp := testutil.Do(t, s.app, http.MethodPost, "/payments/webhook/paypal",
		webhookBody("WH-6", "BILLING.PLAN.CREATED", ""), "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "ignored event type BILLING.PLAN.CREATED", resp.DataMap(t)["note"])

	resp = testutil.Do(t, s.app, http.MethodPost, "/payments/webhook/paypal",
		webhookBody("WH-7", payment.EventSaleCompleted, "PAY-unknown"), "")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "no payment for PAY-unknown", resp.DataMap(t)["note"])
}

func TestPaypalWebhookRejectsBadRequests(t *testing.T) {
	s := newShop(t)

	resp := testutil.Do(t, s.app, http.MethodPost, "/payments/webhook/paypal", "{not json", "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = testutil.Do(t, s.app, http.MethodPost, "/payments/webhook/paypal", `{"event_type":"X"}`, "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	s.gw.VerifyOK = false
	resp = testutil.Do(t, s.app, http.MethodPost, "/payments/webhook/paypal",
		webhookBody("WH-8", payment.EventSaleCompleted, "PAY-x"), "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	var count int64
	s.db.Model(&payment.WebhookEvent{}).Count(&count)
	assert.Zero(t, count)
}
