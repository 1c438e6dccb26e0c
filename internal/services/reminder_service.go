package services

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/models"
	"kopilka/internal/validator"
)

// reminderService manages payment reminders and their paid transition.
type reminderService struct {
	db         *gorm.DB
	categories CategoryServicer
	now        clock
}

// NewReminderService creates a new ReminderServicer.
func NewReminderService(db *gorm.DB, categories CategoryServicer) ReminderServicer {
	return &reminderService{db: db, categories: categories, now: utcNow}
}

// Create adds an active reminder. Without a due date it is due immediately.
func (s *reminderService) Create(householdID uint, userID *uint, input CreateReminderInput) (*models.Reminder, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "reminder title is required")
	}

	reminder := &models.Reminder{
		HouseholdID: householdID,
		UserID:      userID,
		Title:       title,
		IsActive:    true,
	}
	if input.Amount != nil {
		if !input.Amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "reminder amount must be greater than zero")
		}
		reminder.Amount = decimal.NewNullDecimal(input.Amount.Round(2))
	}
	if input.Currency != "" {
		reminder.Currency = strings.ToUpper(strings.TrimSpace(input.Currency))
		if !validator.IsCurrency(reminder.Currency) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "currency must be an ISO 4217 code")
		}
	}
	if input.IntervalDays != nil {
		if *input.IntervalDays < 1 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "interval_days must be at least 1")
		}
		days := *input.IntervalDays
		reminder.IntervalDays = &days
	}
	if input.NextRunAt != nil {
		reminder.NextRunAt = input.NextRunAt.UTC()
	} else {
		reminder.NextRunAt = s.now()
	}

	if _, err := householdCurrency(s.db, householdID); err != nil {
		return nil, err
	}
	if err := s.db.Create(reminder).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return reminder, nil
}

// List returns active reminders first, each group ordered by due date.
func (s *reminderService) List(householdID uint) ([]models.Reminder, error) {
	var reminders []models.Reminder
	if err := s.db.Where("household_id = ?", householdID).
		Order("is_active DESC, next_run_at ASC, id ASC").
		Find(&reminders).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return reminders, nil
}

// Due returns the household's active reminders whose due date is at or before at.
func (s *reminderService) Due(householdID uint, at time.Time) ([]models.Reminder, error) {
	var reminders []models.Reminder
	if err := s.db.Where("household_id = ? AND is_active = ? AND next_run_at <= ?", householdID, true, at.UTC()).
		Order("next_run_at ASC, id ASC").
		Find(&reminders).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return reminders, nil
}

// AllDue returns due reminders across every household.
func (s *reminderService) AllDue(at time.Time) ([]models.Reminder, error) {
	var reminders []models.Reminder
	if err := s.db.Where("is_active = ? AND next_run_at <= ?", true, at.UTC()).
		Order("household_id ASC, next_run_at ASC, id ASC").
		Find(&reminders).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return reminders, nil
}

// MarkPaid records a payment. An amount becomes an expense in a category named
// after the reminder; a recurring reminder moves forward by its interval and a
// one-shot reminder is deactivated. Both writes commit together.
func (s *reminderService) MarkPaid(householdID, reminderID uint) (*MarkPaidResult, error) {
	var result *MarkPaidResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var reminder models.Reminder
		if err := tx.Where("id = ? AND household_id = ?", reminderID, householdID).First(&reminder).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.ErrReminderNotFound
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if !reminder.IsActive {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "reminder is no longer active")
		}

		now := s.now()
		result = &MarkPaidResult{Reminder: &reminder}

		if reminder.Amount.Valid {
			category, err := s.categories.ResolveOrCreate(tx, householdID, reminder.Title)
			if err != nil {
				return err
			}
			currency := reminder.Currency
			if currency == "" {
				if currency, err = householdCurrency(tx, householdID); err != nil {
					return err
				}
			}
			payment := &models.Transaction{
				HouseholdID: householdID,
				UserID:      reminder.UserID,
				Amount:      reminder.Amount.Decimal,
				Currency:    currency,
				Description: reminder.Title,
				Category:    category.Name,
				CategoryID:  &category.ID,
				Kind:        models.KindExpense,
				Date:        now,
				Source:      models.SourceReminder,
			}
			if err := tx.Create(payment).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			result.Transaction = payment
		}

		updates := map[string]interface{}{}
		if reminder.IntervalDays != nil {
			reminder.NextRunAt = now.AddDate(0, 0, *reminder.IntervalDays)
			updates["next_run_at"] = reminder.NextRunAt
		} else {
			reminder.IsActive = false
			updates["is_active"] = false
		}
		if err := tx.Model(&models.Reminder{}).Where("id = ?", reminder.ID).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
