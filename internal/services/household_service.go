package services

import (
	"errors"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/models"
	"kopilka/internal/validator"
)

const (
	defaultHouseholdKey  = "default"
	defaultHouseholdName = "Default household"
	maxNameLength        = 100
)

// householdService resolves identities and manages household membership.
type householdService struct {
	db              *gorm.DB
	defaultCurrency string
}

// NewHouseholdService creates a new HouseholdServicer.
func NewHouseholdService(db *gorm.DB, defaultCurrency string) HouseholdServicer {
	return &householdService{db: db, defaultCurrency: defaultCurrency}
}

// ResolveOrCreate maps an external identity to its user and household,
// provisioning both on first contact. A blank identity resolves to the
// process-wide default household.
func (s *householdService) ResolveOrCreate(identity string) (*Membership, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		household, err := s.defaultHousehold()
		if err != nil {
			return nil, err
		}
		return &Membership{Household: household}, nil
	}

	var result *Membership
	err := s.db.Transaction(func(tx *gorm.DB) error {
		user, err := findOrCreateUser(tx, identity)
		if err != nil {
			return err
		}

		member, err := findMembership(tx, user.ID)
		if err != nil {
			return err
		}
		if member == nil {
			member, err = s.provision(tx, user, identity)
			if err != nil {
				return err
			}
		}

		result = &Membership{User: user, Household: &member.Household, Role: member.Role}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// provision creates a fresh household owned by user.
func (s *householdService) provision(tx *gorm.DB, user *models.User, identity string) (*models.HouseholdMember, error) {
	var member *models.HouseholdMember
	err := tx.Transaction(func(sp *gorm.DB) error {
		household := &models.Household{
			Name:        "Household " + identity,
			Currency:    s.defaultCurrency,
			PrivacyMode: models.PrivacyOpen,
		}
		if err := sp.Create(household).Error; err != nil {
			return err
		}
		member = &models.HouseholdMember{
			HouseholdID: household.ID,
			UserID:      user.ID,
			Role:        models.RoleOwner,
			Household:   *household,
		}
		return sp.Omit("Household", "User").Create(member).Error
	})
	if err == nil {
		return member, nil
	}
	if !isDuplicate(err) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// A concurrent request provisioned this user first.
	winner, err := findMembership(tx, user.ID)
	if err != nil {
		return nil, err
	}
	if winner == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInternalServer, "membership vanished during provisioning")
	}
	return winner, nil
}

func (s *householdService) defaultHousehold() (*models.Household, error) {
	var household models.Household
	err := s.db.Where("default_key = ?", defaultHouseholdKey).First(&household).Error
	if err == nil {
		return &household, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	key := defaultHouseholdKey
	household = models.Household{
		Name:        defaultHouseholdName,
		Currency:    s.defaultCurrency,
		PrivacyMode: models.PrivacyOpen,
		DefaultKey:  &key,
	}
	if err := s.db.Create(&household).Error; err != nil {
		if !isDuplicate(err) {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		var winner models.Household
		if err := s.db.Where("default_key = ?", defaultHouseholdKey).First(&winner).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return &winner, nil
	}
	return &household, nil
}

// GetInfo returns the household card with its members in joining order.
func (s *householdService) GetInfo(householdID uint) (*HouseholdInfo, error) {
	var household models.Household
	err := s.db.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).Preload("Members.User").First(&household, householdID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrHouseholdNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	info := &HouseholdInfo{
		ID:          household.ID,
		Name:        household.Name,
		Currency:    household.Currency,
		PrivacyMode: household.PrivacyMode,
		Members:     make([]MemberInfo, 0, len(household.Members)),
	}
	for _, m := range household.Members {
		info.Members = append(info.Members, MemberInfo{
			UserID:      m.UserID,
			ExternalID:  m.User.ExternalID,
			DisplayName: m.User.DisplayName,
			Role:        m.Role,
		})
	}
	return info, nil
}

// Rename changes the household name. Owners and admins only.
func (s *householdService) Rename(userID uint, name string) (*models.Household, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "household name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "household name is too long")
	}
	return s.updateManaged(userID, "name", name)
}

// SetCurrency changes the household's default currency. Owners and admins only.
func (s *householdService) SetCurrency(userID uint, currency string) (*models.Household, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if !validator.IsCurrency(currency) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "currency must be an ISO 4217 code")
	}
	return s.updateManaged(userID, "currency", currency)
}

func (s *householdService) updateManaged(userID uint, column string, value interface{}) (*models.Household, error) {
	member, err := findMembership(s.db, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, apperrors.ErrNoMembership
	}
	if !member.Role.CanManage() {
		return nil, apperrors.ErrForbidden
	}

	if err := s.db.Model(&models.Household{}).
		Where("id = ?", member.HouseholdID).
		Update(column, value).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var household models.Household
	if err := s.db.First(&household, member.HouseholdID).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &household, nil
}

// SetDisplayName sets the name other members see.
func (s *householdService) SetDisplayName(userID uint, name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "display name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "display name is too long")
	}

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrNotFound, "user not found")
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Model(&user).Update("display_name", name).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.DisplayName = &name
	return &user, nil
}

// Leave removes the user's membership. A sole owner takes the household with them.
func (s *householdService) Leave(userID uint) (*LeaveResult, error) {
	var result *LeaveResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		member, err := findMembership(tx, userID)
		if err != nil {
			return err
		}
		if member == nil {
			return apperrors.ErrNoMembership
		}

		deleted, err := detachMember(tx, member)
		if err != nil {
			return err
		}
		result = &LeaveResult{HouseholdID: member.HouseholdID, HouseholdDeleted: deleted}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
