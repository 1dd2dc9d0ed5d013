// internal/pkg/auth/password.go
package auth

import (
	"fmt"

	"github.com/your-org/fashion-store/internal/config"
	"github.com/your-org/fashion-store/internal/pkg/apperror"
	"golang.org/x/crypto/bcrypt"
)

const maxPasswordLength = 72

// PasswordManager handles password operations
type PasswordManager struct {
	cost      int
	minLength int
}

// NewPasswordManager creates a new password manager
func NewPasswordManager(cfg *config.Config) *PasswordManager {
	return &PasswordManager{
		cost:      cfg.Security.BcryptCost,
		minLength: cfg.Security.PasswordMinLength,
	}
}

// HashPassword validates and hashes a password using bcrypt
func (p *PasswordManager) HashPassword(password string) (string, error) {
	if err := p.ValidatePassword(password); err != nil {
		return "", err
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashedBytes), nil
}

// VerifyPassword verifies a password against its hash
func (p *PasswordManager) VerifyPassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// ValidatePassword checks the configured length policy. bcrypt ignores bytes past 72.
func (p *PasswordManager) ValidatePassword(password string) error {
	if len(password) < p.minLength {
		return apperror.Validation("password must be at least %d characters long", p.minLength)
	}
	if len(password) > maxPasswordLength {
		return apperror.Validation("password must be no more than %d characters long", maxPasswordLength)
	}
	return nil
}
