package models

import (
	"time"

	"gorm.io/gorm"
)

// LoginRecord is written on every successful login.
type LoginRecord struct {
	gorm.Model
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	IPAddress string    `gorm:"size:64" json:"ip_address"`
	Device    string    `gorm:"size:255" json:"device"`
	LoggedAt  time.Time `gorm:"index" json:"logged_at"`
}
