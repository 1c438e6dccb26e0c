package services

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/logger"
	"kopilka/internal/models"
	"kopilka/internal/pagination"
	"kopilka/internal/parser"
	"kopilka/internal/validator"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db         *gorm.DB
	categories CategoryServicer
	parser     TextParser
	now        clock
}

// NewTransactionService creates a new TransactionServicer. parser may be nil,
// in which case CreateFromText always reports an upstream failure.
func NewTransactionService(db *gorm.DB, categories CategoryServicer, textParser TextParser) TransactionServicer {
	return &transactionService{db: db, categories: categories, parser: textParser, now: utcNow}
}

// Create validates and stores a manually entered transaction.
func (s *transactionService) Create(householdID uint, userID *uint, input CreateTransactionInput) (*models.Transaction, error) {
	record := &models.Transaction{
		HouseholdID: householdID,
		UserID:      userID,
		Amount:      input.Amount,
		Currency:    input.Currency,
		Kind:        input.Kind,
		Description: strings.TrimSpace(input.Description),
		Merchant:    strings.TrimSpace(input.Merchant),
		Source:      models.SourceManual,
	}
	if input.Date != nil {
		record.Date = *input.Date
	}

	var result *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.createWithDB(tx, record, input.Category, true)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// createWithDB fills defaults, validates and inserts a transaction using the given connection.
// With strictCurrency an unknown currency is rejected, otherwise it falls back to the household's.
func (s *transactionService) createWithDB(tx *gorm.DB, record *models.Transaction, categoryName string, strictCurrency bool) (*models.Transaction, error) {
	if !record.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	record.Amount = record.Amount.Round(2)

	if record.Kind == "" {
		record.Kind = models.KindExpense
	}
	if !record.Kind.Valid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "kind must be expense or income")
	}

	record.Currency = strings.ToUpper(strings.TrimSpace(record.Currency))
	if record.Currency != "" && !validator.IsCurrency(record.Currency) {
		if strictCurrency {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "currency must be an ISO 4217 code")
		}
		record.Currency = ""
	}
	if record.Currency == "" {
		currency, err := householdCurrency(tx, record.HouseholdID)
		if err != nil {
			return nil, err
		}
		record.Currency = currency
	}

	if record.Date.IsZero() {
		record.Date = s.now()
	}
	record.Date = record.Date.UTC()

	if strings.TrimSpace(categoryName) != "" {
		category, err := s.categories.ResolveOrCreate(tx, record.HouseholdID, categoryName)
		if err != nil {
			return nil, err
		}
		record.CategoryID = &category.ID
		record.Category = category.Name
	}

	if err := tx.Create(record).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return record, nil
}

// CreateFromText asks the parser to read a transaction out of free text and
// stores the validated guess.
func (s *transactionService) CreateFromText(ctx context.Context, householdID uint, userID *uint, text string) (*models.Transaction, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "text is required")
	}
	if s.parser == nil {
		return nil, apperrors.WithMessage(apperrors.ErrUpstreamFailure, "text parsing is not configured, please enter the transaction manually")
	}

	var known []string
	if err := s.db.Model(&models.Category{}).
		Where("household_id = ?", householdID).
		Order("sort_order ASC").
		Pluck("name", &known).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	guess, err := s.parser.Parse(ctx, parser.Request{Text: text, Today: s.now(), Categories: known})
	if err != nil {
		logger.Get().Warnw("transaction parser failed", "household_id", householdID, "error", err)
		return nil, apperrors.Wrap(apperrors.ErrUpstreamFailure, err)
	}
	if !guess.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "no amount found in the message")
	}

	record := &models.Transaction{
		HouseholdID: householdID,
		UserID:      userID,
		Amount:      guess.Amount,
		Currency:    guess.Currency,
		Kind:        models.TransactionKind(guess.Kind),
		Description: guess.Description,
		Merchant:    guess.Merchant,
		Source:      models.SourceParser,
		RawText:     text,
		AICategory:  guess.Category,
	}
	if !record.Kind.Valid() {
		record.Kind = models.KindExpense
	}
	if record.Description == "" {
		record.Description = text
	}
	if guess.Date != nil {
		record.Date = *guess.Date
	}

	var result *models.Transaction
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.createWithDB(tx, record, guess.Category, false)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// List returns a page of the household's transactions, newest business date first.
func (s *transactionService) List(householdID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	query := func() *gorm.DB {
		q := s.db.Model(&models.Transaction{}).Where("household_id = ?", householdID)
		if filter.FromDate != nil {
			q = q.Where("date >= ?", filter.FromDate.UTC())
		}
		if filter.ToDate != nil {
			q = q.Where("date <= ?", filter.ToDate.UTC())
		}
		if filter.Kind != nil {
			q = q.Where("kind = ?", *filter.Kind)
		}
		if filter.Category != nil {
			q = q.Where("category = ?", *filter.Category)
		}
		if filter.UserID != nil {
			q = q.Where("user_id = ?", *filter.UserID)
		}
		return q
	}

	var totalItems int64
	if err := query().Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := query().Preload("User").
		Order("date DESC, id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// lastOf loads the most recently entered transaction of a user.
func lastOf(tx *gorm.DB, householdID, userID uint) (*models.Transaction, error) {
	var record models.Transaction
	if err := tx.Where("household_id = ? AND user_id = ?", householdID, userID).
		Order("id DESC").
		First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrTransactionNotFound, "you have no transactions yet")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &record, nil
}

// CorrectLast fixes the amount or description of the user's most recent transaction.
func (s *transactionService) CorrectLast(householdID, userID uint, amount *decimal.Decimal, description *string) (*models.Transaction, error) {
	if amount == nil && description == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "nothing to correct: provide an amount or a description")
	}
	if amount != nil && !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}

	var record *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = lastOf(tx, householdID, userID)
		if err != nil {
			return err
		}

		updates := make(map[string]interface{})
		if amount != nil {
			record.Amount = amount.Round(2)
			updates["amount"] = record.Amount
		}
		if description != nil {
			record.Description = strings.TrimSpace(*description)
			updates["description"] = record.Description
		}
		if err := tx.Model(&models.Transaction{}).Where("id = ?", record.ID).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ReassignCategory moves a transaction to another category. Overriding the
// parser's suggestion is recorded as category feedback.
func (s *transactionService) ReassignCategory(householdID uint, userID *uint, transactionID uint, categoryName string) (*models.Transaction, error) {
	var record models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND household_id = ?", transactionID, householdID).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrTransactionNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		category, err := s.categories.ResolveOrCreate(tx, householdID, categoryName)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Transaction{}).Where("id = ?", record.ID).
			Updates(map[string]interface{}{"category_id": category.ID, "category": category.Name}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		record.CategoryID = &category.ID
		record.Category = category.Name

		if record.Source != models.SourceParser || strings.EqualFold(record.AICategory, category.Name) {
			return nil
		}
		feedback := &models.CategoryFeedback{
			HouseholdID:   householdID,
			UserID:        userID,
			TransactionID: &record.ID,
			AICategory:    record.AICategory,
			SourceText:    record.RawText,
			FinalCategory: category.Name,
		}
		if err := tx.Create(feedback).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteLast removes the user's most recent transaction and returns it.
func (s *transactionService) DeleteLast(householdID, userID uint) (*models.Transaction, error) {
	var record *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		record, err = lastOf(tx, householdID, userID)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.CategoryFeedback{}).
			Where("transaction_id = ?", record.ID).
			Update("transaction_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(&models.Transaction{}, record.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}
