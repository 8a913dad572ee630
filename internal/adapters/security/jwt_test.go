package security

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gradlink/accounts-service/internal/domain"
	"github.com/gradlink/accounts-service/internal/ports"
)

func TestJWTSignerRoundTrip(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralJWTSigner("test-key-1")
	if err != nil {
		t.Fatalf("NewEphemeralJWTSigner: %v", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	claims := ports.AuthClaims{
		UserID:    uuid.New(),
		Email:     "asha@example.com",
		Role:      domain.RoleStudent,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}

	token, err := signer.Sign(claims)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	parsed, err := signer.ParseAndValidate(token)
	if err != nil {
		t.Fatalf("ParseAndValidate: %v", err)
	}
	if parsed.UserID != claims.UserID {
		t.Fatalf("user id = %s, want %s", parsed.UserID, claims.UserID)
	}
	if parsed.Email != claims.Email || parsed.Role != claims.Role {
		t.Fatalf("claims mismatch: %+v", parsed)
	}
	if !parsed.ExpiresAt.Equal(claims.ExpiresAt) {
		t.Fatalf("expires at = %s, want %s", parsed.ExpiresAt, claims.ExpiresAt)
	}
}

func TestJWTSignerExpiredToken(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralJWTSigner("test-key-1")
	if err != nil {
		t.Fatalf("NewEphemeralJWTSigner: %v", err)
	}

	// Expiry beyond the parse leeway.
	now := time.Now().UTC()
	token, err := signer.Sign(ports.AuthClaims{
		UserID:    uuid.New(),
		Email:     "asha@example.com",
		Role:      domain.RoleStudent,
		IssuedAt:  now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := signer.ParseAndValidate(token); !errors.Is(err, domain.ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestJWTSignerRejectsForeignKey(t *testing.T) {
	t.Parallel()

	signerA, err := NewEphemeralJWTSigner("key-a")
	if err != nil {
		t.Fatalf("NewEphemeralJWTSigner: %v", err)
	}
	signerB, err := NewEphemeralJWTSigner("key-b")
	if err != nil {
		t.Fatalf("NewEphemeralJWTSigner: %v", err)
	}

	now := time.Now().UTC()
	token, err := signerA.Sign(ports.AuthClaims{
		UserID:    uuid.New(),
		Email:     "asha@example.com",
		Role:      domain.RoleStudent,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := signerB.ParseAndValidate(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestJWTSignerRejectsGarbage(t *testing.T) {
	t.Parallel()

	signer, err := NewEphemeralJWTSigner("test-key-1")
	if err != nil {
		t.Fatalf("NewEphemeralJWTSigner: %v", err)
	}
	if _, err := signer.ParseAndValidate("not.a.token"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}
