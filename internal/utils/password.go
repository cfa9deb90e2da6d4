package utils

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.  Hashes
// written by the legacy PHP clients carry the $2y$ prefix, which is the
// same algorithm as $2a$.
func VerifyPassword(hash, plain string) bool {
	if strings.HasPrefix(hash, "$2y$") {
		hash = "$2a$" + hash[len("$2y$"):]
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
