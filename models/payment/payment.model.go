package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"lumos/models"
)

// Status is the lifecycle label of a payment
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
)

// Method is the gateway a payment goes through
type Method string

const (
	MethodPaypal    Method = "paypal"
	MethodIntersend Method = "intersend"
)

// Item types accepted at checkout
const (
	ItemCourse   = "course"
	ItemMaterial = "material"
)

// Payment is a monetary transaction for a course or a single material
type Payment struct {
	ID         uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	UserID     uint            `gorm:"not null;index" json:"user_id"`
	CourseID   *uint           `gorm:"index" json:"course_id"`
	MaterialID *uint           `gorm:"index" json:"material_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency   string          `gorm:"size:3;default:'USD'" json:"currency"`
	Method     Method          `gorm:"column:payment_method;size:20;not null" json:"payment_method"`
	Status     Status          `gorm:"size:20;default:'pending';index" json:"status"`

	// Gateway specific references
	PaypalPaymentID        string `gorm:"size:100;index;default:''" json:"paypal_payment_id"`
	IntersendTransactionID string `gorm:"size:100;default:''" json:"intersend_transaction_id"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at"`

	User     models.User      `gorm:"foreignKey:UserID" json:"-"`
	Course   *models.Course   `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Material *models.Material `gorm:"foreignKey:MaterialID" json:"material,omitempty"`
	History  []PaymentHistory `gorm:"foreignKey:PaymentID" json:"history,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ItemName describes what was bought. Course and Material must be preloaded.
func (p Payment) ItemName() string {
	if p.Course != nil {
		return p.Course.Title
	}
	if p.Material != nil {
		return p.Material.Course.Title + " - " + p.Material.Title
	}
	return "Unknown Item"
}

// ItemType returns "course" or "material".
func (p Payment) ItemType() string {
	if p.MaterialID != nil {
		return ItemMaterial
	}
	return ItemCourse
}

// IsValidMethod checks a payment method label.
func IsValidMethod(m string) bool {
	return Method(m) == MethodPaypal || Method(m) == MethodIntersend
}
