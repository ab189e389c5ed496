package services

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	passwordIterations = 100000
	passwordKeyLen     = 32
	passwordSaltBytes  = 16
)

// HashPassword returns "salt$digest". The salt is random hex and its text,
// not the decoded bytes, is the PBKDF2 salt.
func HashPassword(password string) (string, error) {
	raw := make([]byte, passwordSaltBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	salt := hex.EncodeToString(raw)
	return salt + "$" + derivePassword(password, salt), nil
}

func derivePassword(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), passwordIterations, passwordKeyLen, sha256.New)
	return hex.EncodeToString(key)
}

// VerifyPassword checks password against a "salt$digest" credential.
func VerifyPassword(password, stored string) bool {
	salt, digest, ok := strings.Cut(stored, "$")
	if !ok {
		return false
	}
	computed := derivePassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

// isLegacyCredential reports a credential stored before hashing was introduced.
func isLegacyCredential(stored string) bool {
	return !strings.Contains(stored, "$")
}

func verifyLegacy(password, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(stored)) == 1
}
