package middleware

import (
	"github.com/gin-gonic/gin"

	"kopilka/internal/services"
)

// MembershipResolver maps an external identity to its household.
type MembershipResolver interface {
	ResolveOrCreate(identity string) (*services.Membership, error)
}

// HouseholdContext resolves the identity stored by Identity into a household
// and stores HouseholdIDKey and RoleKey. UserIDKey is set only when the
// caller is a person rather than tooling.
func HouseholdContext(resolver MembershipResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		membership, err := resolver.ResolveOrCreate(c.GetString(IdentityKey))
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(HouseholdIDKey, membership.Household.ID)
		c.Set(RoleKey, membership.Role)
		if membership.User != nil {
			c.Set(UserIDKey, membership.User.ID)
		}
		c.Next()
	}
}
