package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	apperrors "kopilka/internal/errors"
)

const tokenIssuer = "kopilka"

// Claims are the JWT claims of an identity token. The subject carries the
// caller's external identity.
type Claims struct {
	jwt.RegisteredClaims
}

// IssueToken signs an HS256 token for identity valid for ttl.
func IssueToken(secret, identity string, ttl time.Duration) (string, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return "", errors.New("identity is required")
	}
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates tokenString and returns the identity it carries.
func ParseToken(secret, tokenString string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return "", err
	}
	if !token.Valid || strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("token carries no identity")
	}
	return claims.Subject, nil
}

// Identity authenticates the caller and stores their external identity under
// IdentityKey. A Bearer token identifies a person. A valid X-API-Key marks a
// trusted frontend that names the person in X-User-Identity; without that
// header the call is a tooling call and the stored identity is empty.
func Identity(jwtSecret, serviceAPIKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Authorization header must be a Bearer token"))
				return
			}
			identity, err := ParseToken(jwtSecret, parts[1])
			if err != nil {
				abortWithError(c, apperrors.WithMessage(apperrors.ErrUnauthorized, "Invalid or expired token"))
				return
			}
			c.Set(IdentityKey, identity)
			c.Next()
			return
		}

		if c.GetHeader("X-API-Key") == "" {
			abortWithError(c, apperrors.ErrUnauthorized)
			return
		}
		if !checkServiceKey(c, serviceAPIKey) {
			return
		}
		c.Set(IdentityKey, strings.TrimSpace(c.GetHeader("X-User-Identity")))
		c.Next()
	}
}
