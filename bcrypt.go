package auth

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// passwordHashCost matches the work factor the identity records were created
// with; changing it only affects newly hashed passwords.
const passwordHashCost = 10

// HashPassword will generate a salted password hash. The salt is embedded in
// the digest, so hashing the same password twice yields different digests.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext password matches
// the hashed password. Malformed digests compare as a mismatch, never a panic.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		// bcrypt reports malformed digests as a distinct error; both cases
		// must look identical to the caller.
		return ErrMismatchedHashAndPassword
	}
	return nil
}

// RandomPasswordHash is a temporary password
func RandomPasswordHash() string {
	pwd := uuid.New()

	h, err := HashPassword(pwd.String())
	if err != nil {
		return RandomPasswordHash()
	}

	return h
}
