package models

// CategoryFeedback records a user overriding the category the parser suggested.
type CategoryFeedback struct {
	Base
	HouseholdID   uint   `gorm:"not null;index" json:"household_id"`
	UserID        *uint  `json:"user_id,omitempty"`
	TransactionID *uint  `json:"transaction_id,omitempty"`
	AICategory    string `json:"ai_category"`
	SourceText    string `json:"source_text"`
	FinalCategory string `gorm:"not null" json:"final_category"`
}
