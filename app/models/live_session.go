package models

import "time"

const (
	LiveSessionStatusScheduled = "scheduled"
	LiveSessionStatusLive      = "live"
	LiveSessionStatusEnded     = "ended"
)

// LiveSession describes a scheduled broadcast (YouTube embed or Twilio room).
// Invariant: at most one row has Active=true; scheduling a new session
// deactivates the previous one in the same transaction.
type LiveSession struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Title      string     `gorm:"type:varchar(255);not null" json:"title"`
	StartsAt   time.Time  `gorm:"type:timestamp;not null;index" json:"starts_at"`
	EndsAt     *time.Time `gorm:"type:timestamp;default:null" json:"ends_at,omitempty"`
	Timezone   string     `gorm:"type:varchar(64);not null;default:'Africa/Lagos'" json:"timezone"`
	Status     string     `gorm:"type:varchar(32);not null;default:'scheduled'" json:"status"`
	Active     bool       `gorm:"default:false;index" json:"active"`
	Segment    string     `gorm:"type:varchar(50);not null;default:'all'" json:"segment"`
	YoutubeURL string     `gorm:"type:varchar(1024)" json:"youtube_url"`
	TwilioRoom string     `gorm:"type:varchar(191)" json:"twilio_room"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName specifies the table name for the LiveSession model
func (LiveSession) TableName() string {
	return "live_sessions"
}
