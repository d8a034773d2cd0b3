package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is pinned rather than relying on bcrypt.DefaultCost so a
// library upgrade cannot silently change hashing behavior.
const bcryptCost = 12

// bcrypt ignores everything past 72 bytes; reject instead of
// silently truncating.
const maxPasswordBytes = 72

var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// HashPassword hashes a plain password using bcrypt.
func HashPassword(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// CheckPassword compares plain password with hashed password.
func CheckPassword(plain, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
