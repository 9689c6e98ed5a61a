package token

import (
	"strconv"

	"authservice/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer claim stamped on every token this service signs.
const IssuerName = "auth-service"

// Claims is the payload shared by access and refresh tokens: {sub, role}
// plus the registered claims. Refresh tokens additionally set ID (jti) to
// the refresh-token row id.
type Claims struct {
	Role model.Role `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim back into the numeric user id.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// RefreshTokenID parses the jti claim back into the refresh-token row id.
func (c *Claims) RefreshTokenID() (uint, error) {
	id, err := strconv.ParseUint(c.ID, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
