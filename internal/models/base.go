package models

import "time"

// Base contains common columns for all tables. Rows are hard-deleted so the
// unique indexes (category name, invite code, budget period) stay usable.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// All lists every model in dependency order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Household{},
		&HouseholdMember{},
		&HouseholdInvite{},
		&Category{},
		&Transaction{},
		&CategoryBudget{},
		&Reminder{},
		&CategoryFeedback{},
		&AuditLog{},
	}
}
