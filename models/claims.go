package models

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// Claims is the payload of both access and refresh tokens; Type tells them
// apart so a refresh token cannot be used as a bearer token.
type Claims struct {
	UserID uuid.UUID `json:"userId"`
	Roles  []string  `json:"roles"`
	Type   string    `json:"typ"`
	jwt.RegisteredClaims
}

func (c *Claims) HasRole(role Role) bool {
	for _, r := range c.Roles {
		if Role(r) == role {
			return true
		}
	}
	return false
}
