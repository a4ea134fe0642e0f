// Package crypto implements server-side password hashing and verification.
package crypto

import "golang.org/x/crypto/bcrypt"

// HashCost is the fixed bcrypt work factor.
const HashCost = bcrypt.DefaultCost

// HashPassword returns a bcrypt hash of password. bcrypt embeds a fresh
// random salt in every hash, so equal passwords hash differently.
func HashPassword(password []byte) ([]byte, error) {
	return bcrypt.GenerateFromPassword(password, HashCost)
}

// VerifyPassword reports whether password matches the stored hash.
// A malformed hash never matches.
func VerifyPassword(password, hash []byte) bool {
	return bcrypt.CompareHashAndPassword(hash, password) == nil
}
