package payment

import (
	"time"

	"gorm.io/datatypes"
)

// Gateway webhook event types handled by the service
const (
	EventSaleCompleted = "PAYMENT.SALE.COMPLETED"
	EventSaleDenied    = "PAYMENT.SALE.DENIED"
	EventSaleRefunded  = "PAYMENT.SALE.REFUNDED"
)

// WebhookEvent stores every delivery from the gateway, deduplicated by event id
type WebhookEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	EventID     string         `gorm:"uniqueIndex;size:100;not null" json:"event_id"`
	EventType   string         `gorm:"size:100;not null;index" json:"event_type"`
	ResourceID  string         `gorm:"size:100;default:''" json:"resource_id"`
	Payload     datatypes.JSON `gorm:"not null" json:"payload"`
	Processed   bool           `gorm:"default:false" json:"processed"`
	Note        string         `gorm:"type:text" json:"note"`
	CreatedAt   time.Time      `json:"created_at"`
	ProcessedAt *time.Time     `json:"processed_at"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
