package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"kopilka/internal/models"
	"kopilka/internal/pagination"
	"kopilka/internal/parser"
)

// Membership is the resolved (user, household, role) triple for a caller.
// User is nil for tooling calls that resolve to the default household.
type Membership struct {
	User      *models.User
	Household *models.Household
	Role      models.MemberRole
}

// MemberInfo describes one member in a household listing.
type MemberInfo struct {
	UserID      uint              `json:"user_id"`
	ExternalID  string            `json:"external_id"`
	DisplayName *string           `json:"display_name,omitempty"`
	Role        models.MemberRole `json:"role"`
}

// HouseholdInfo is the household card shown to members.
type HouseholdInfo struct {
	ID          uint               `json:"id"`
	Name        string             `json:"name"`
	Currency    string             `json:"currency"`
	PrivacyMode models.PrivacyMode `json:"privacy_mode"`
	Members     []MemberInfo       `json:"members"`
}

// LeaveResult reports what happened when a member left.
type LeaveResult struct {
	HouseholdID      uint `json:"household_id"`
	HouseholdDeleted bool `json:"household_deleted"`
}

// HouseholdServicer resolves identities to households and manages membership.
type HouseholdServicer interface {
	ResolveOrCreate(identity string) (*Membership, error)
	GetInfo(householdID uint) (*HouseholdInfo, error)
	Rename(userID uint, name string) (*models.Household, error)
	SetCurrency(userID uint, currency string) (*models.Household, error)
	SetDisplayName(userID uint, name string) (*models.User, error)
	Leave(userID uint) (*LeaveResult, error)
}

// JoinResult is the outcome of redeeming an invite.
type JoinResult struct {
	Household *models.Household `json:"household"`
	// AlreadyMember is true when the call was a no-op.
	AlreadyMember bool `json:"already_member"`
	// LeftHouseholdID is set when the user moved from another household.
	LeftHouseholdID *uint `json:"left_household_id,omitempty"`
}

// InviteServicer issues and redeems invite codes.
type InviteServicer interface {
	Issue(householdID, userID uint) (*models.HouseholdInvite, error)
	Join(identity, code string) (*JoinResult, error)
}

// MergeResult reports a category merge.
type MergeResult struct {
	Source            string `json:"source"`
	Target            string `json:"target"`
	TransactionsMoved int64  `json:"transactions_moved"`
}

// CategoryServicer maintains a household's category registry.
type CategoryServicer interface {
	List(householdID uint) ([]models.Category, error)
	Create(householdID uint, name string) (*models.Category, error)
	Rename(householdID uint, oldName, newName string) (*models.Category, error)
	Merge(householdID uint, sourceName, targetName string) (*MergeResult, error)
	Delete(householdID uint, name string) error
	NormalizeDuplicates(householdID uint) (int, error)
	// ResolveOrCreate finds a category by name (exact, then case-insensitive) or
	// creates it, using the caller's transaction.
	ResolveOrCreate(tx *gorm.DB, householdID uint, name string) (*models.Category, error)
}

// BudgetStatus is one budgeted category's spending for the current month.
type BudgetStatus struct {
	CategoryID uint    `json:"category_id"`
	Category   string  `json:"category"`
	Period     string  `json:"period"`
	Limit      float64 `json:"limit"`
	Spent      float64 `json:"spent"`
	Percent    float64 `json:"percent"`
}

// BudgetServicer stores monthly limits and reports spending against them.
type BudgetServicer interface {
	Set(householdID uint, categoryName string, limit decimal.Decimal) (*models.CategoryBudget, error)
	Status(householdID uint) ([]BudgetStatus, error)
}

// CreateTransactionInput carries the fields of a manually entered transaction.
type CreateTransactionInput struct {
	Amount      decimal.Decimal
	Currency    string
	Kind        models.TransactionKind
	Category    string
	Description string
	Merchant    string
	Date        *time.Time
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Kind     *models.TransactionKind
	Category *string
	UserID   *uint
}

// TextParser is the natural-language collaborator used by CreateFromText.
type TextParser interface {
	Parse(ctx context.Context, req parser.Request) (*parser.Guess, error)
}

// TransactionServicer records and edits transactions.
type TransactionServicer interface {
	Create(householdID uint, userID *uint, input CreateTransactionInput) (*models.Transaction, error)
	CreateFromText(ctx context.Context, householdID uint, userID *uint, text string) (*models.Transaction, error)
	List(householdID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	CorrectLast(householdID, userID uint, amount *decimal.Decimal, description *string) (*models.Transaction, error)
	ReassignCategory(householdID uint, userID *uint, transactionID uint, categoryName string) (*models.Transaction, error)
	DeleteLast(householdID, userID uint) (*models.Transaction, error)
}

// CreateReminderInput carries the fields of a new reminder.
type CreateReminderInput struct {
	Title        string
	Amount       *decimal.Decimal
	Currency     string
	IntervalDays *int
	NextRunAt    *time.Time
}

// MarkPaidResult is the outcome of paying a reminder.
type MarkPaidResult struct {
	Reminder    *models.Reminder    `json:"reminder"`
	Transaction *models.Transaction `json:"transaction,omitempty"`
}

// ReminderServicer manages payment reminders.
type ReminderServicer interface {
	Create(householdID uint, userID *uint, input CreateReminderInput) (*models.Reminder, error)
	List(householdID uint) ([]models.Reminder, error)
	Due(householdID uint, at time.Time) ([]models.Reminder, error)
	AllDue(at time.Time) ([]models.Reminder, error)
	MarkPaid(householdID, reminderID uint) (*MarkPaidResult, error)
}

// ReportWindow selects the transactions a report covers.
type ReportWindow struct {
	Days   int
	UserID *uint
}

// Summary is the expense total with a per-category breakdown.
type Summary struct {
	Days        int                `json:"days"`
	Currency    string             `json:"currency"`
	TotalAmount float64            `json:"total_amount"`
	Categories  map[string]float64 `json:"categories"`
}

// Balance compares incomes and expenses.
type Balance struct {
	Days     int     `json:"days"`
	Currency string  `json:"currency"`
	Expenses float64 `json:"expenses"`
	Incomes  float64 `json:"incomes"`
	Net      float64 `json:"net"`
}

// MemberTotal is one member's expense sum.
type MemberTotal struct {
	UserID *uint   `json:"user_id"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// MembersReport lists expense sums per member, largest first.
type MembersReport struct {
	Days     int           `json:"days"`
	Currency string        `json:"currency"`
	Members  []MemberTotal `json:"members"`
}

// ShopTotal is one merchant's expense sum.
type ShopTotal struct {
	Merchant string  `json:"merchant"`
	Amount   float64 `json:"amount"`
}

// ShopsReport lists expense sums per merchant, largest first.
type ShopsReport struct {
	Days     int         `json:"days"`
	Currency string      `json:"currency"`
	Shops    []ShopTotal `json:"shops"`
}

// ReportServicer builds read-only rollups over a lookback window.
type ReportServicer interface {
	Summary(householdID uint, window ReportWindow) (*Summary, error)
	Balance(householdID uint, window ReportWindow) (*Balance, error)
	Members(householdID uint, window ReportWindow) (*MembersReport, error)
	Shops(householdID uint, window ReportWindow) (*ShopsReport, error)
	Transactions(householdID uint, window ReportWindow) ([]models.Transaction, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(householdID uint, userID *uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]interface{})
}
