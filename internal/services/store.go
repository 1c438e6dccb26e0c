package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/models"
)

// clock returns the current time. Services hold one so tests can pin it.
type clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// createIsolated inserts value inside a savepoint, so a unique-constraint
// violation leaves the surrounding transaction usable for a re-read.
func createIsolated(tx *gorm.DB, value interface{}) error {
	return tx.Transaction(func(sp *gorm.DB) error {
		return sp.Create(value).Error
	})
}

// findOrCreateUser returns the user for an external identity, creating it on first contact.
func findOrCreateUser(tx *gorm.DB, identity string) (*models.User, error) {
	var user models.User
	err := tx.Where("external_id = ?", identity).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	created := &models.User{ExternalID: identity}
	if err := createIsolated(tx, created); err != nil {
		if !isDuplicate(err) {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		var winner models.User
		if err := tx.Where("external_id = ?", identity).First(&winner).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &winner, nil
	}
	return created, nil
}

// findMembership loads a user's membership with its household, or nil when there is none.
func findMembership(tx *gorm.DB, userID uint) (*models.HouseholdMember, error) {
	var member models.HouseholdMember
	err := tx.Preload("Household").Where("user_id = ?", userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &member, nil
}

// detachMember removes a membership under the departure rules: an owner may
// not leave while others remain, and the last member takes the household with them.
func detachMember(tx *gorm.DB, member *models.HouseholdMember) (bool, error) {
	var count int64
	if err := tx.Model(&models.HouseholdMember{}).
		Where("household_id = ?", member.HouseholdID).
		Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if member.Role == models.RoleOwner && count > 1 {
		return false, apperrors.ErrOwnerCannotLeave
	}

	if err := tx.Delete(&models.HouseholdMember{}, member.ID).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if count > 1 {
		return false, nil
	}
	if err := purgeHousehold(tx, member.HouseholdID); err != nil {
		return false, err
	}
	return true, nil
}

// purgeHousehold deletes a household and everything it owns. Audit rows are kept.
func purgeHousehold(tx *gorm.DB, householdID uint) error {
	owned := []interface{}{
		&models.CategoryFeedback{},
		&models.CategoryBudget{},
		&models.Transaction{},
		&models.Reminder{},
		&models.HouseholdInvite{},
		&models.Category{},
		&models.HouseholdMember{},
	}
	for _, model := range owned {
		if err := tx.Where("household_id = ?", householdID).Delete(model).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	if err := tx.Delete(&models.Household{}, householdID).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// householdCurrency returns the household's default currency.
func householdCurrency(tx *gorm.DB, householdID uint) (string, error) {
	var household models.Household
	if err := tx.Select("id", "currency").First(&household, householdID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrHouseholdNotFound
		}
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return household.Currency, nil
}
