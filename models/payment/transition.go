package payment

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrInvalidTransition is returned when a status change is not in the allowed set.
var ErrInvalidTransition = errors.New("invalid status transition")

var paymentTransitions = map[Status][]Status{
	StatusPending:   {StatusCompleted, StatusFailed},
	StatusCompleted: {StatusRefunded},
}

var refundTransitions = map[RefundStatus][]RefundStatus{
	RefundRequested: {RefundApproved, RefundRejected},
	RefundApproved:  {RefundProcessed},
}

// CanTransitionTo reports whether a payment may move from s to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsValid reports whether s is a known payment status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed, StatusRefunded:
		return true
	}
	return false
}

func (s RefundStatus) CanTransitionTo(next RefundStatus) bool {
	for _, allowed := range refundTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s RefundStatus) IsValid() bool {
	switch s {
	case RefundRequested, RefundApproved, RefundRejected, RefundProcessed:
		return true
	}
	return false
}

// TransitionTo moves the payment to next in memory. completed_at is stamped on completion.
func (p *Payment) TransitionTo(next Status, at time.Time) error {
	if !p.Status.CanTransitionTo(next) {
		return errors.Wrapf(ErrInvalidTransition, "payment %s: %s -> %s", p.ID, p.Status, next)
	}
	p.Status = next
	if next == StatusCompleted {
		p.CompletedAt = &at
	}
	return nil
}

// TransitionTo moves the refund to next in memory. processed_at is stamped on processing.
func (r *Refund) TransitionTo(next RefundStatus, at time.Time) error {
	if !r.Status.CanTransitionTo(next) {
		return errors.Wrapf(ErrInvalidTransition, "refund %d: %s -> %s", r.ID, r.Status, next)
	}
	r.Status = next
	if next == RefundProcessed {
		r.ProcessedAt = &at
	}
	return nil
}

// Transition changes the payment status and appends the matching history row on tx.
// The row is only updated while it still holds the status p was loaded with, so a
// stale copy cannot overwrite a newer status.
func Transition(tx *gorm.DB, p *Payment, next Status, actor, notes string, payload datatypes.JSON) error {
	prev, prevCompletedAt := p.Status, p.CompletedAt
	if err := p.TransitionTo(next, time.Now()); err != nil {
		return err
	}
	res := tx.Model(p).Where("status = ?", prev).Select("status", "completed_at", "updated_at").Updates(p)
	if res.Error != nil {
		p.Status, p.CompletedAt = prev, prevCompletedAt
		return errors.Wrap(res.Error, "saving payment status")
	}
	if res.RowsAffected != 1 {
		p.Status, p.CompletedAt = prev, prevCompletedAt
		return errors.Wrapf(ErrInvalidTransition, "payment %s is no longer %s", p.ID, prev)
	}
	return errors.Wrap(RecordHistory(tx, p, actor, notes, payload), "recording payment history")
}

// RecordHistory appends a history row with the payment's current status.
func RecordHistory(tx *gorm.DB, p *Payment, actor, notes string, payload datatypes.JSON) error {
	history := PaymentHistory{
		PaymentID: p.ID,
		Status:    p.Status,
		ActorType: actor,
		Notes:     notes,
		Payload:   payload,
	}
	return tx.Create(&history).Error
}
