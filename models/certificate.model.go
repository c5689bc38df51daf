package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Certificate is issued once per enrollment when the course is completed
type Certificate struct {
	gorm.Model
	EnrollmentID  uint      `json:"enrollment_id" gorm:"uniqueIndex;not null"`
	CertificateID string    `json:"certificate_id" gorm:"uniqueIndex;size:100;not null"`
	IssuedAt      time.Time `json:"issued_at"`
	IsValid       bool      `json:"is_valid" gorm:"default:true"`

	Enrollment Enrollment `gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE" json:"enrollment,omitempty"`
}

// NewCertificateID returns a fresh human readable certificate number.
func NewCertificateID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "LUMOS-" + strings.ToUpper(raw[:12])
}
