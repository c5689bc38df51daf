package payment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ActorType enum values
const (
	ActorUser    = "USER"
	ActorAdmin   = "ADMIN"
	ActorGateway = "GATEWAY"
	ActorSystem  = "SYSTEM"
)

// PaymentHistory is the audit log of every payment status change
type PaymentHistory struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PaymentID uuid.UUID      `gorm:"type:char(36);not null;index" json:"payment_id"`
	Status    Status         `gorm:"size:20;not null" json:"status"`
	ActorType string         `gorm:"size:10;not null;default:'SYSTEM'" json:"actor_type"`
	Notes     string         `gorm:"type:text" json:"notes"`
	Payload   datatypes.JSON `json:"payload,omitempty"` // raw gateway response, when there is one
	CreatedAt time.Time      `json:"created_at"`
}

func (PaymentHistory) TableName() string {
	return "payment_history"
}
