package models

import "time"

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusExpired  = "expired"
	SubscriptionStatusInactive = "inactive"
)

// Subscription records one buyer's access to one plan. Keyed by (email, plan)
// with upsert semantics: re-verifying the same charge must not create a second
// row. EndedAt is set only for monthly plans; lifetime plans never expire.
type Subscription struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Email     string     `gorm:"type:varchar(200);not null;index:ux_subscriptions_email_plan,unique,priority:1" json:"email"`
	Plan      string     `gorm:"type:varchar(50);not null;index:ux_subscriptions_email_plan,unique,priority:2" json:"plan"`
	Status    string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	Amount    int64      `gorm:"not null;default:0" json:"amount"`
	StartedAt time.Time  `gorm:"type:timestamp;not null" json:"started_at"`
	EndedAt   *time.Time `gorm:"type:timestamp;default:null" json:"ended_at,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsActiveAt reports whether the subscription grants access at the given time.
func (s *Subscription) IsActiveAt(now time.Time) bool {
	if s.Status != SubscriptionStatusActive {
		return false
	}
	return s.EndedAt == nil || s.EndedAt.After(now)
}
