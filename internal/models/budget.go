package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodLayout formats a budget period key (calendar month).
const PeriodLayout = "2006-01"

// CategoryBudget is the spending limit of one category for one calendar month.
type CategoryBudget struct {
	Base
	HouseholdID uint            `gorm:"not null;uniqueIndex:idx_budgets_household_category_period" json:"household_id"`
	CategoryID  uint            `gorm:"not null;uniqueIndex:idx_budgets_household_category_period" json:"category_id"`
	Period      string          `gorm:"size:7;not null;uniqueIndex:idx_budgets_household_category_period" json:"period"`
	LimitAmount decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"limit_amount"`

	Category Category `gorm:"foreignKey:CategoryID" json:"category"`
}

// PeriodOf returns the UTC month key containing t.
func PeriodOf(t time.Time) string {
	return t.UTC().Format(PeriodLayout)
}

// MonthBounds returns [start, next) for the UTC month containing t.
func MonthBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
