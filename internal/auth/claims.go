package auth

import "github.com/golang-jwt/jwt/v5"

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// Claims are the only supported JWT claims shape for this service.
// Multi-tenant invariant: CompanyID must be present for all activity; every
// query downstream is scoped by it.
type Claims struct {
	jwt.RegisteredClaims

	UserID    int64     `json:"user_id"`
	CompanyID int64     `json:"company_id"`
	Role      string    `json:"role"`
	TokenType TokenType `json:"token_type"`
}
