package services

import (
	"crypto/rand"
	"errors"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/models"
	"kopilka/internal/validator"
)

const (
	inviteCodeLength  = 8
	maxInviteAttempts = 10
)

// inviteService issues and redeems household invite codes.
type inviteService struct {
	db      *gorm.DB
	ttl     time.Duration
	now     clock
	newCode func() (string, error)
}

// NewInviteService creates a new InviteServicer. Codes stay valid for ttl.
func NewInviteService(db *gorm.DB, ttl time.Duration) InviteServicer {
	return &inviteService{
		db:  db,
		ttl: ttl,
		now: utcNow,
		newCode: func() (string, error) {
			return generateInviteCode(inviteCodeLength)
		},
	}
}

// generateInviteCode draws n characters from the invite alphabet. The
// alphabet has 32 symbols, so byte%32 is uniform.
func generateInviteCode(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	alphabet := validator.InviteAlphabet
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf), nil
}

// Issue creates a new invite for the household, retrying on code collisions.
func (s *inviteService) Issue(householdID, userID uint) (*models.HouseholdInvite, error) {
	if _, err := householdCurrency(s.db, householdID); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxInviteAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		invite := &models.HouseholdInvite{
			HouseholdID:     householdID,
			Code:            code,
			CreatedByUserID: userID,
			ExpiresAt:       s.now().Add(s.ttl),
		}
		err = s.db.Create(invite).Error
		if err == nil {
			return invite, nil
		}
		if !isDuplicate(err) {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil, apperrors.WithMessage(apperrors.ErrInternalServer, "could not allocate a unique invite code")
}

// Join adds the identity to the household behind code. Unknown codes that
// parse as integers are treated as raw household IDs, as older clients shared those.
func (s *inviteService) Join(identity, code string) (*JoinResult, error) {
	identity = strings.TrimSpace(identity)
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invite code is required")
	}
	if identity == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "an identity is required to join a household")
	}

	var result *JoinResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		household, err := s.resolveCode(tx, code)
		if err != nil {
			return err
		}

		user, err := findOrCreateUser(tx, identity)
		if err != nil {
			return err
		}

		result = &JoinResult{Household: household}

		member, err := findMembership(tx, user.ID)
		if err != nil {
			return err
		}
		if member != nil {
			if member.HouseholdID == household.ID {
				result.AlreadyMember = true
				return nil
			}
			if _, err := detachMember(tx, member); err != nil {
				return err
			}
			left := member.HouseholdID
			result.LeftHouseholdID = &left
		}

		joined := &models.HouseholdMember{
			HouseholdID: household.ID,
			UserID:      user.ID,
			Role:        models.RoleMember,
		}
		if err := createIsolated(tx, joined); err != nil {
			if !isDuplicate(err) {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			// Lost a race with a concurrent join of the same user.
			winner, err := findMembership(tx, user.ID)
			if err != nil {
				return err
			}
			if winner == nil || winner.HouseholdID != household.ID {
				return apperrors.WithMessage(apperrors.ErrAlreadyExists, "user joined another household concurrently")
			}
			result.AlreadyMember = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *inviteService) resolveCode(tx *gorm.DB, code string) (*models.Household, error) {
	var invite models.HouseholdInvite
	err := tx.Where("code = ?", code).First(&invite).Error
	switch {
	case err == nil:
		if invite.Expired(s.now()) {
			return nil, apperrors.WithMessage(apperrors.ErrInviteNotFound, "invite code has expired")
		}
		return s.loadJoinable(tx, invite.HouseholdID)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	householdID, parseErr := strconv.ParseUint(code, 10, 64)
	if parseErr != nil || householdID == 0 {
		return nil, apperrors.ErrInviteNotFound
	}
	return s.loadJoinable(tx, uint(householdID))
}

// loadJoinable loads a household that can accept members. The default
// household never can.
func (s *inviteService) loadJoinable(tx *gorm.DB, householdID uint) (*models.Household, error) {
	var household models.Household
	err := tx.Where("default_key IS NULL").First(&household, householdID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInviteNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &household, nil
}
