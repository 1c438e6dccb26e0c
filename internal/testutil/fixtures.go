package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"kopilka/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Amount parses a decimal literal, failing the test on bad input.
func Amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", s, err)
	}
	return d
}

// CreateTestUser creates a user with a unique external identity.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()

	user := &models.User{ExternalID: fmt.Sprintf("tg:%d", 100000+nextID())}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestHousehold creates a RUB household owned by a fresh user.
func CreateTestHousehold(t *testing.T, db *gorm.DB) (*models.Household, *models.User) {
	t.Helper()

	owner := CreateTestUser(t, db)
	household := &models.Household{
		Name:        fmt.Sprintf("Household %d", nextID()),
		Currency:    "RUB",
		PrivacyMode: models.PrivacyOpen,
	}
	if err := db.Create(household).Error; err != nil {
		t.Fatalf("failed to create test household: %v", err)
	}
	AddTestMember(t, db, household.ID, owner.ID, models.RoleOwner)
	return household, owner
}

// AddTestMember attaches an existing user to a household.
func AddTestMember(t *testing.T, db *gorm.DB, householdID, userID uint, role models.MemberRole) *models.HouseholdMember {
	t.Helper()

	member := &models.HouseholdMember{HouseholdID: householdID, UserID: userID, Role: role}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create test membership: %v", err)
	}
	return member
}

// CreateTestCategory creates a category with the given name.
func CreateTestCategory(t *testing.T, db *gorm.DB, householdID uint, name string) *models.Category {
	t.Helper()

	category := &models.Category{HouseholdID: householdID, Name: name}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates an expense dated now. A non-nil category links both fields.
func CreateTestTransaction(t *testing.T, db *gorm.DB, householdID uint, userID *uint, category *models.Category, amount string) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		HouseholdID: householdID,
		UserID:      userID,
		Amount:      Amount(t, amount),
		Currency:    "RUB",
		Kind:        models.KindExpense,
		Date:        time.Now().UTC(),
		Source:      models.SourceManual,
	}
	if category != nil {
		tx.CategoryID = &category.ID
		tx.Category = category.Name
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateLegacyTransaction creates an expense that only carries free-text category.
func CreateLegacyTransaction(t *testing.T, db *gorm.DB, householdID uint, categoryText, amount string) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		HouseholdID: householdID,
		Amount:      Amount(t, amount),
		Currency:    "RUB",
		Category:    categoryText,
		Kind:        models.KindExpense,
		Date:        time.Now().UTC(),
		Source:      models.SourceManual,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create legacy transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates a budget for the category in the given period.
func CreateTestBudget(t *testing.T, db *gorm.DB, householdID, categoryID uint, period, limit string) *models.CategoryBudget {
	t.Helper()

	budget := &models.CategoryBudget{
		HouseholdID: householdID,
		CategoryID:  categoryID,
		Period:      period,
		LimitAmount: Amount(t, limit),
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestInvite creates an invite code expiring at expiresAt.
func CreateTestInvite(t *testing.T, db *gorm.DB, householdID, userID uint, code string, expiresAt time.Time) *models.HouseholdInvite {
	t.Helper()

	invite := &models.HouseholdInvite{
		HouseholdID:     householdID,
		Code:            code,
		CreatedByUserID: userID,
		ExpiresAt:       expiresAt,
	}
	if err := db.Create(invite).Error; err != nil {
		t.Fatalf("failed to create test invite: %v", err)
	}
	return invite
}
