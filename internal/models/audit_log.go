package models

// AuditLog records household-level mutations.
type AuditLog struct {
	Base
	HouseholdID  uint   `gorm:"not null;index" json:"household_id"`
	UserID       *uint  `gorm:"index" json:"user_id,omitempty"`
	Action       string `gorm:"not null" json:"action"`
	ResourceType string `gorm:"not null" json:"resource_type"`
	ResourceID   uint   `json:"resource_id"`
	IPAddress    string `json:"ip_address"`
	Changes      string `json:"changes,omitempty"`
}
