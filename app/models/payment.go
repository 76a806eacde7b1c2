package models

import "time"

// Payment is the append-only ledger of every observed payment event: webhook
// deliveries, verify calls, failures included. Rows are never updated after
// insert; duplicate observations of one charge intentionally produce duplicate
// rows so the audit trail reflects every delivery.
type Payment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Event         string    `gorm:"type:varchar(100);not null;index" json:"event"`
	Data          string    `gorm:"type:longtext" json:"data"`
	CustomerEmail string    `gorm:"type:varchar(200);index" json:"customer_email"`
	Amount        int64     `gorm:"not null;default:0" json:"amount"`
	Currency      string    `gorm:"type:varchar(8);not null;default:'NGN'" json:"currency"`
	Status        string    `gorm:"type:varchar(32);not null;index" json:"status"`
	Plan          string    `gorm:"type:varchar(50);index" json:"plan"`
	UserID        uint      `gorm:"index" json:"user_id"`
	Reference     string    `gorm:"type:varchar(191);index" json:"reference"`
	ReceivedAt    time.Time `gorm:"type:timestamp;not null;index" json:"received_at"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}
