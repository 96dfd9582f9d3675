package models

import (
	"time"
)

// SMSVerification keeps track of OTP codes sent to a contact.
type SMSVerification struct {
	BaseModel
	Contact   string     `gorm:"index" json:"contact"`
	Role      string     `gorm:"index" json:"role"`
	CodeHash  string     `json:"-"`
	ExpiresAt time.Time  `json:"expires_at"`
	Attempts  int        `gorm:"not null;default:0" json:"attempts"`
	Verified  bool       `json:"verified"`
	UsedAt    *time.Time `json:"used_at"`
}
