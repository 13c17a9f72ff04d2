// Package auth hashes passwords, issues and verifies session tokens and seals
// sensitive profile fields at rest.
package auth

import "golang.org/x/crypto/bcrypt"

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 6

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether password matches hash. Malformed hashes never match.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
