package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	BotCredentialStatusPending  = "pending"
	BotCredentialStatusActive   = "active"
	BotCredentialStatusRejected = "rejected"
)

// BotCredential is an MT5 account submission for bot trading. Admins review
// pending submissions and activate or reject them.
type BotCredential struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UUID        string     `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	UserID      uint       `gorm:"not null;index" json:"user_id"`
	Login       string     `gorm:"type:varchar(100);not null" json:"login"`
	Server      string     `gorm:"type:varchar(191);not null" json:"server"`
	PasswordEnc string     `gorm:"type:text;not null" json:"-"`
	Status      string     `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	ReviewedAt  *time.Time `gorm:"type:timestamp;default:null" json:"reviewed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// NewBotCredential builds a pending submission with a fresh UUID token.
func NewBotCredential(userID uint, login, server, passwordEnc string) *BotCredential {
	return &BotCredential{
		UUID:        uuid.New().String(),
		UserID:      userID,
		Login:       login,
		Server:      server,
		PasswordEnc: passwordEnc,
		Status:      BotCredentialStatusPending,
	}
}
