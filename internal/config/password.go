package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/jonathan/career-compass/internal/types"
)

// ErrPasswordTooShort is returned for passwords under types.MinPasswordLength.
var ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters long", types.MinPasswordLength)

// ErrPasswordTooLong is returned when the peppered password exceeds bcrypt's 72-byte input.
var ErrPasswordTooLong = errors.New("password is too long")

// PasswordConfig holds configuration for password hashing and verification.
type PasswordConfig struct {
	BcryptCost int
	Pepper     string // optional global secret appended before hashing
}

// NewPasswordConfig reads BCRYPT_COST (default: 12, range 10-14) and
// optionally PASSWORD_PEPPER.
func NewPasswordConfig() (*PasswordConfig, error) {
	costStr := os.Getenv("BCRYPT_COST")
	if costStr == "" {
		costStr = "12"
	}

	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}

	config := &PasswordConfig{
		BcryptCost: cost,
		Pepper:     os.Getenv("PASSWORD_PEPPER"),
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the bcrypt cost range.
func (c *PasswordConfig) Validate() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	return nil
}

// CheckStrength enforces the minimum length and bcrypt's input limit.
func (c *PasswordConfig) CheckStrength(pw string) error {
	if len([]rune(pw)) < types.MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(pw)+len(c.Pepper) > 72 {
		return ErrPasswordTooLong
	}
	return nil
}

// HashPassword checks strength and hashes a password with the pepper applied.
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	if err := c.CheckStrength(pw); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pw+c.Pepper), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether pw matches storedHash. An empty hash never matches.
func (c *PasswordConfig) VerifyPassword(pw, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(pw+c.Pepper)) == nil
}
