package payment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lumos/models"
)

func TestStatus_CanTransitionTo(t *testing.T) {
	all := []Status{StatusPending, StatusCompleted, StatusFailed, StatusRefunded}
	allowed := map[Status]map[Status]bool{
		StatusPending:   {StatusCompleted: true, StatusFailed: true},
		StatusCompleted: {StatusRefunded: true},
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[from][to]
			assert.Equalf(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestRefundStatus_CanTransitionTo(t *testing.T) {
	all := []RefundStatus{RefundRequested, RefundApproved, RefundRejected, RefundProcessed}
	allowed := map[RefundStatus]map[RefundStatus]bool{
		RefundRequested: {RefundApproved: true, RefundRejected: true},
		RefundApproved:  {RefundProcessed: true},
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[from][to]
			assert.Equalf(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestPayment_TransitionTo(t *testing.T) {
	now := time.Now()

	p := &Payment{ID: uuid.New(), Status: StatusPending}
	require.NoError(t, p.TransitionTo(StatusCompleted, now))
	assert.Equal(t, StatusCompleted, p.Status)
	require.NotNil(t, p.CompletedAt)
	assert.True(t, p.CompletedAt.Equal(now))

	err := p.TransitionTo(StatusFailed, now)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, StatusCompleted, p.Status, "status must not change on a rejected transition")

	require.NoError(t, p.TransitionTo(StatusRefunded, now))
	assert.Equal(t, StatusRefunded, p.Status)

	failed := &Payment{ID: uuid.New(), Status: StatusFailed}
	assert.Equal(t, ErrInvalidTransition, errors.Cause(failed.TransitionTo(StatusCompleted, now)))
	assert.Nil(t, failed.CompletedAt)
}

func TestRefund_TransitionTo(t *testing.T) {
	now := time.Now()

	r := &Refund{Status: RefundRequested}
	require.NoError(t, r.TransitionTo(RefundApproved, now))
	assert.Nil(t, r.ProcessedAt)
	require.NoError(t, r.TransitionTo(RefundProcessed, now))
	require.NotNil(t, r.ProcessedAt)

	rejected := &Refund{Status: RefundRejected}
	assert.Equal(t, ErrInvalidTransition, errors.Cause(rejected.TransitionTo(RefundProcessed, now)))
}

func TestPayment_ItemName(t *testing.T) {
	course := &models.Course{Title: "Go Basics"}
	material := &models.Material{Title: "Chapter 1", Course: models.Course{Title: "Go Basics"}}

	assert.Equal(t, "Go Basics", Payment{Course: course}.ItemName())
	assert.Equal(t, "Go Basics - Chapter 1", Payment{Material: material}.ItemName())
	assert.Equal(t, "Unknown Item", Payment{}.ItemName())

	materialID := uint(3)
	assert.Equal(t, ItemMaterial, Payment{MaterialID: &materialID}.ItemType())
	assert.Equal(t, ItemCourse, Payment{}.ItemType())
}
