package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lumos/models"
)

// RefundStatus is the lifecycle label of a refund
type RefundStatus string

const (
	RefundRequested RefundStatus = "requested"
	RefundApproved  RefundStatus = "approved"
	RefundRejected  RefundStatus = "rejected"
	RefundProcessed RefundStatus = "processed"
)

// Refund is a request to return the money of one completed payment
type Refund struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	PaymentID       uuid.UUID       `gorm:"type:char(36);uniqueIndex;not null" json:"payment_id"`
	Reason          string          `gorm:"type:text;not null" json:"reason"`
	Status          RefundStatus    `gorm:"size:20;default:'requested';index" json:"status"`
	RefundAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"refund_amount"`
	ProcessedByID   *uint           `json:"processed_by_id"`
	GatewayRefundID string          `gorm:"size:100;default:''" json:"gateway_refund_id"`
	GatewayError    string          `gorm:"type:text" json:"gateway_error"` // last failed gateway attempt
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	ProcessedAt     *time.Time      `json:"processed_at"`

	Payment     Payment      `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
	ProcessedBy *models.User `gorm:"foreignKey:ProcessedByID;constraint:OnDelete:SET NULL" json:"-"`
}

func (Refund) TableName() string {
	return "refunds"
}
