package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/models"
	"kopilka/internal/services"
)

type resolverFunc func(identity string) (*services.Membership, error)

func (f resolverFunc) ResolveOrCreate(identity string) (*services.Membership, error) {
	return f(identity)
}

func setupHouseholdRouter(identity string, resolver MembershipResolver) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(IdentityKey, identity)
		c.Next()
	})
	r.Use(HouseholdContext(resolver))
	r.GET("/test", func(c *gin.Context) {
		_, hasUser := c.Get(UserIDKey)
		c.JSON(http.StatusOK, gin.H{
			"household_id": c.GetUint(HouseholdIDKey),
			"user_id":      c.GetUint(UserIDKey),
			"has_user":     hasUser,
			"role":         c.MustGet(RoleKey),
		})
	})
	return r
}

func TestHouseholdContext(t *testing.T) {
	t.Run("member", func(t *testing.T) {
		var seen string
		resolver := resolverFunc(func(identity string) (*services.Membership, error) {
			seen = identity
			user := &models.User{ExternalID: identity}
			user.ID = 5
			hh := &models.Household{}
			hh.ID = 9
			return &services.Membership{User: user, Household: hh, Role: models.RoleOwner}, nil
		})
		rec := doRequest(setupHouseholdRouter("tg:1", resolver), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		body := parseBody(t, rec)
		if seen != "tg:1" {
			t.Errorf("resolver got %q", seen)
		}
		if body["household_id"].(float64) != 9 || body["user_id"].(float64) != 5 || body["role"] != "owner" {
			t.Errorf("unexpected context %v", body)
		}
	})

	t.Run("tooling_call_has_no_user", func(t *testing.T) {
		resolver := resolverFunc(func(identity string) (*services.Membership, error) {
			hh := &models.Household{}
			hh.ID = 1
			return &services.Membership{Household: hh, Role: models.RoleOwner}, nil
		})
		rec := doRequest(setupHouseholdRouter("", resolver), nil)
		body := parseBody(t, rec)
		if body["has_user"] != false {
			t.Errorf("expected no user, got %v", body)
		}
	})

	t.Run("resolver_error", func(t *testing.T) {
		resolver := resolverFunc(func(identity string) (*services.Membership, error) {
			return nil, apperrors.ErrHouseholdNotFound
		})
		rec := doRequest(setupHouseholdRouter("tg:1", resolver), nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
		assertErrorCode(t, rec, "HOUSEHOLD_NOT_FOUND")
	})
}
