package models

// Category is a household-scoped spending or income bucket.
type Category struct {
	Base
	HouseholdID uint   `gorm:"not null;uniqueIndex:idx_categories_household_name" json:"household_id"`
	Name        string `gorm:"not null;uniqueIndex:idx_categories_household_name" json:"name"`
	ParentID    *uint  `json:"parent_id,omitempty"`
	SortOrder   int    `gorm:"not null;default:0" json:"sort_order"`
}
