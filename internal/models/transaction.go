package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is the polarity of a transaction.
type TransactionKind string

const (
	KindExpense TransactionKind = "expense"
	KindIncome  TransactionKind = "income"
)

// Valid reports whether k is a known kind.
func (k TransactionKind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

// TransactionSource records how a transaction was entered.
type TransactionSource string

const (
	SourceManual   TransactionSource = "manual"
	SourceParser   TransactionSource = "ai"
	SourceReminder TransactionSource = "reminder"
)

// Transaction is one income or expense record. Category holds the legacy
// free-text name and mirrors the linked Category's name whenever CategoryID is set.
type Transaction struct {
	Base
	HouseholdID uint              `gorm:"not null;index:idx_transactions_household_date" json:"household_id"`
	UserID      *uint             `gorm:"index" json:"user_id,omitempty"`
	Amount      decimal.Decimal   `gorm:"type:decimal(14,2);not null" json:"amount"`
	Currency    string            `gorm:"size:3;not null" json:"currency"`
	Description string            `json:"description"`
	Category    string            `gorm:"index" json:"category"`
	CategoryID  *uint             `gorm:"index" json:"category_id,omitempty"`
	Kind        TransactionKind   `gorm:"not null" json:"kind"`
	Date        time.Time         `gorm:"not null;index:idx_transactions_household_date" json:"date"`
	Merchant    string            `json:"merchant,omitempty"`
	Source      TransactionSource `gorm:"not null;default:'manual'" json:"source"`
	RawText     string            `json:"raw_text,omitempty"`
	AICategory  string            `json:"ai_category,omitempty"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
