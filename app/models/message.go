package models

import (
	"time"

	"gorm.io/gorm"
)

// Message is an admin broadcast shown on member dashboards, gated by segment
// like content items.
type Message struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"type:varchar(255);not null" json:"title"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	Segment   string         `gorm:"type:varchar(50);not null;default:'all';index" json:"segment"`
	Published bool           `gorm:"default:true;index" json:"published"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
