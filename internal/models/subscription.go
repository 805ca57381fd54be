package models

import "time"

const (
	TierFree = "free"
	TierPro  = "pro"
)

// Subscription mirrors the entitlement state written by the out-of-band
// payment system. This service only reads it to gate premium content.
type Subscription struct {
	UserID string `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	Tier   string `gorm:"column:tier;type:text" json:"tier"`
	Status string `gorm:"column:status;type:text" json:"status"` // active|canceled|past_due

	CurrentPeriodEnd *time.Time `gorm:"column:current_period_end;type:timestamptz" json:"current_period_end,omitempty"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;type:timestamptz" json:"updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }

// Entitled reports whether the subscription currently grants pro access.
func (s *Subscription) Entitled(now time.Time) bool {
	if s == nil {
		return false
	}
	if s.Tier != TierPro || s.Status != "active" {
		return false
	}
	if s.CurrentPeriodEnd != nil && s.CurrentPeriodEnd.Before(now) {
		return false
	}
	return true
}
