package ports

import (
	"time"

	"github.com/google/uuid"
	"github.com/gradlink/accounts-service/internal/domain"
)

// AuthClaims is the token payload issued on login and validated by the HTTP
// auth middleware.
type AuthClaims struct {
	UserID    uuid.UUID
	Email     string
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenSigner signs and validates session tokens.
type TokenSigner interface {
	Sign(claims AuthClaims) (string, error)
	ParseAndValidate(token string) (AuthClaims, error)
}

// PasswordHasher hashes and compares credentials for the local identity
// adapter. The hosted identity store hashes server-side.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}
