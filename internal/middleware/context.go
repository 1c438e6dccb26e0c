package middleware

// Keys under which the middleware chain stores request-scoped values.
const (
	IdentityKey    = "identity"
	UserIDKey      = "userID"
	HouseholdIDKey = "householdID"
	RoleKey        = "role"
	requestIDKey   = "requestID"
)
