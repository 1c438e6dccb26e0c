package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reminder is a recurring or one-shot payment reminder.
type Reminder struct {
	Base
	HouseholdID  uint                `gorm:"not null;index" json:"household_id"`
	UserID       *uint               `json:"user_id,omitempty"`
	Title        string              `gorm:"not null" json:"title"`
	Amount       decimal.NullDecimal `gorm:"type:decimal(14,2)" json:"amount"`
	Currency     string              `gorm:"size:3" json:"currency,omitempty"`
	IntervalDays *int                `json:"interval_days,omitempty"`
	NextRunAt    time.Time           `gorm:"not null;index" json:"next_run_at"`
	IsActive     bool                `gorm:"not null;default:true" json:"is_active"`
}
