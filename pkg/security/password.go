package security

import (
	"errors"
	"fmt"

	"github.com/cafenowa/cafenowa-backend/pkg/config"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidHash signals a stored hash bcrypt cannot parse.
var ErrInvalidHash = fmt.Errorf("invalid bcrypt hash")

// HashPassword returns a bcrypt hash of the provided password. The cost
// factor comes from configuration and is clamped to bcrypt's legal range.
func HashPassword(password string, cfg config.SecurityConfig) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	cost := clampCost(cfg.BcryptCost)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword returns true when the password matches the stored hash.
// bcrypt's comparison is constant-time over the derived key.
func VerifyPassword(password, encoded string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, ErrInvalidHash
}

func clampCost(cost int) int {
	if cost < bcrypt.MinCost {
		return bcrypt.DefaultCost
	}
	if cost > bcrypt.MaxCost {
		return bcrypt.MaxCost
	}
	return cost
}
