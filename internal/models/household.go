package models

import "time"

// PrivacyMode controls what members see of each other's transactions.
type PrivacyMode string

const (
	// PrivacyOpen lets every member see every transaction.
	PrivacyOpen PrivacyMode = "open"
)

// MemberRole is a member's permission level inside a household.
type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// CanManage reports whether the role may rename the household or change its currency.
func (r MemberRole) CanManage() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Household is the shared financial unit. It owns categories, transactions,
// budgets, reminders and invites.
type Household struct {
	Base
	Name        string      `gorm:"not null" json:"name"`
	Currency    string      `gorm:"size:3;not null" json:"currency"`
	PrivacyMode PrivacyMode `gorm:"not null;default:'open'" json:"privacy_mode"`
	// DefaultKey is set only on the process-wide household used by calls without an identity.
	DefaultKey *string `gorm:"uniqueIndex" json:"-"`

	Members []HouseholdMember `gorm:"foreignKey:HouseholdID" json:"members,omitempty"`
}

// HouseholdMember links a user to their single household.
type HouseholdMember struct {
	Base
	HouseholdID uint       `gorm:"not null;index" json:"household_id"`
	UserID      uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	Role        MemberRole `gorm:"not null" json:"role"`

	User      User      `gorm:"foreignKey:UserID" json:"user"`
	Household Household `gorm:"foreignKey:HouseholdID" json:"-"`
}

// HouseholdInvite is a time-limited join code.
type HouseholdInvite struct {
	Base
	HouseholdID     uint      `gorm:"not null;index" json:"household_id"`
	Code            string    `gorm:"size:16;not null;uniqueIndex" json:"code"`
	CreatedByUserID uint      `gorm:"not null" json:"created_by_user_id"`
	ExpiresAt       time.Time `gorm:"not null" json:"expires_at"`
}

// Expired reports whether the invite can no longer be used at t.
func (i *HouseholdInvite) Expired(t time.Time) bool {
	return !t.Before(i.ExpiresAt)
}
