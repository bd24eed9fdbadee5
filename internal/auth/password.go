package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the cost used when the original accounts were provisioned
const bcryptCost = 10

// MinPasswordLength is enforced when accounts are created
const MinPasswordLength = 8

var ErrWeakPassword = errors.New("password must be at least 8 characters")

// HashPassword hashes a password with bcrypt
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the bcrypt hash
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// CheckPasswordStrength rejects passwords that are too short
func CheckPasswordStrength(password string) error {
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// dummyHash is compared against when there is no real hash to check
var dummyHash = mustHash("skportal-timing-equalizer")

func mustHash(password string) string {
	h, err := HashPassword(password)
	if err != nil {
		panic(err)
	}
	return h
}

// burnCompare spends the same bcrypt work as a real comparison so that unknown
// and inactive accounts take as long to reject as a wrong password.
func burnCompare(password string) {
	VerifyPassword(password, dummyHash)
}
