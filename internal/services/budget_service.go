package services

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/models"
)

var hundred = decimal.NewFromInt(100)

// budgetService handles budget-related business logic.
type budgetService struct {
	db         *gorm.DB
	categories CategoryServicer
	now        clock
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, categories CategoryServicer) BudgetServicer {
	return &budgetService{db: db, categories: categories, now: utcNow}
}

// Set stores the current month's limit for a category, creating the category
// when it does not exist yet. A second call for the same month updates in place.
func (s *budgetService) Set(householdID uint, categoryName string, limit decimal.Decimal) (*models.CategoryBudget, error) {
	if !limit.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget limit must be greater than zero")
	}

	period := models.PeriodOf(s.now())
	var budget models.CategoryBudget
	err := s.db.Transaction(func(tx *gorm.DB) error {
		category, err := s.categories.ResolveOrCreate(tx, householdID, categoryName)
		if err != nil {
			return err
		}

		row := &models.CategoryBudget{
			HouseholdID: householdID,
			CategoryID:  category.ID,
			Period:      period,
			LimitAmount: limit.Round(2),
		}
		if err := tx.Omit("Category").Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "household_id"}, {Name: "category_id"}, {Name: "period"}},
			DoUpdates: clause.AssignmentColumns([]string{"limit_amount", "updated_at"}),
		}).Create(row).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if err := tx.Preload("Category").
			Where("household_id = ? AND category_id = ? AND period = ?", householdID, category.ID, period).
			First(&budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

// Status reports spending against every budget of the current month, most
// over-budget first.
func (s *budgetService) Status(householdID uint) ([]BudgetStatus, error) {
	now := s.now()
	period := models.PeriodOf(now)
	start, next := models.MonthBounds(now)

	var budgets []models.CategoryBudget
	if err := s.db.Preload("Category").
		Where("household_id = ? AND period = ?", householdID, period).
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(budgets) == 0 {
		return []BudgetStatus{}, nil
	}

	var expenses []models.Transaction
	if err := s.db.Select("category_id", "category", "amount").
		Where("household_id = ? AND kind = ? AND date >= ? AND date < ?", householdID, models.KindExpense, start, next).
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	spent := make(map[uint]decimal.Decimal, len(budgets))
	for _, t := range expenses {
		id, ok := budgetCategoryOf(t, budgets)
		if !ok {
			continue
		}
		spent[id] = spent[id].Add(t.Amount)
	}

	statuses := make([]BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		used := spent[b.CategoryID]
		percent := decimal.Zero
		if !b.LimitAmount.IsZero() {
			percent = used.Div(b.LimitAmount).Mul(hundred).Round(1)
		}
		statuses = append(statuses, BudgetStatus{
			CategoryID: b.CategoryID,
			Category:   b.Category.Name,
			Period:     b.Period,
			Limit:      b.LimitAmount.InexactFloat64(),
			Spent:      used.InexactFloat64(),
			Percent:    percent.InexactFloat64(),
		})
	}

	sort.SliceStable(statuses, func(i, j int) bool {
		if statuses[i].Percent != statuses[j].Percent {
			return statuses[i].Percent > statuses[j].Percent
		}
		return statuses[i].Category < statuses[j].Category
	})
	return statuses, nil
}

// budgetCategoryOf maps a transaction onto a budgeted category, by ID or,
// for legacy rows without one, by case-insensitive name.
func budgetCategoryOf(t models.Transaction, budgets []models.CategoryBudget) (uint, bool) {
	for _, b := range budgets {
		if t.CategoryID != nil {
			if *t.CategoryID == b.CategoryID {
				return b.CategoryID, true
			}
			continue
		}
		if t.Category != "" && strings.EqualFold(normalizeCategoryName(t.Category), b.Category.Name) {
			return b.CategoryID, true
		}
	}
	return 0, false
}
