package auth

import "golang.org/x/crypto/bcrypt"

// Cost 8 keeps a login round-trip under ~30ms on the small instances
// this service runs on. Raise it if the deployment ever faces the
// open internet instead of the sales team.
const bcryptCost = 8

// HashPassword returns the bcrypt hash for a plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored hash.
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
