package utils

import (
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"lumos/config"
	"lumos/database"
	"lumos/logger"
	"lumos/models/payment"
)

const expiredPaymentNote = "Payment expired before completion"

// ExpireStalePayments fails every pending payment created before cutoff and
// records a system history entry for each. It returns how many were failed.
func ExpireStalePayments(db *gorm.DB, cutoff time.Time) (int, error) {
	var stale []payment.Payment
	if err := db.Where("status = ? AND created_at < ?", payment.StatusPending, cutoff).Find(&stale).Error; err != nil {
		return 0, err
	}

	expired := 0
	for i := range stale {
		p := &stale[i]
		err := db.Transaction(func(tx *gorm.DB) error {
			return payment.Transition(tx, p, payment.StatusFailed, payment.ActorSystem, expiredPaymentNote, nil)
		})
		if errors.Cause(err) == payment.ErrInvalidTransition {
			// completed or cancelled since the batch was loaded
			continue
		}
		if err != nil {
			logger.Error(err, "expiring payment failed", map[string]interface{}{"payment_id": p.ID.String()})
			continue
		}
		expired++
	}
	return expired, nil
}

// StartPaymentScheduler registers the stale payment sweep and starts the cron runner.
func StartPaymentScheduler(cfg *config.Config) *cron.Cron {
	c := cron.New()
	_, err := c.AddFunc(cfg.PaymentSweepSpec, func() {
		cutoff := time.Now().Add(-cfg.PendingPaymentTTL)
		n, err := ExpireStalePayments(database.Database.Db, cutoff)
		if err != nil {
			logger.Error(err, "payment sweep failed", nil)
			return
		}
		if n > 0 {
			logger.Info("payment sweep expired %d pending payments", n)
		}
	})
	if err != nil {
		logger.Error(err, "invalid PAYMENT_SWEEP_SPEC", map[string]interface{}{"spec": cfg.PaymentSweepSpec})
		return c
	}
	c.Start()
	logger.Info("payment sweep scheduled (%s, ttl %s)", cfg.PaymentSweepSpec, cfg.PendingPaymentTTL)
	return c
}
