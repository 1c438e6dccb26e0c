package models

// User is a person known by an opaque external identity (chat id, SSO subject).
type User struct {
	Base
	ExternalID  string  `gorm:"uniqueIndex;not null" json:"external_id"`
	DisplayName *string `json:"display_name,omitempty"`

	Membership *HouseholdMember `gorm:"foreignKey:UserID" json:"membership,omitempty"`
}

// Label returns the display name, falling back to the external identity.
func (u *User) Label() string {
	if u.DisplayName != nil && *u.DisplayName != "" {
		return *u.DisplayName
	}
	return u.ExternalID
}
