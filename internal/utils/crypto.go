// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"math/big"
)

const ResetCodeLength = 6

func GenerateRandomString(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	return randomFromCharset(charset, length)
}

// GenerateNumericCode returns a uniformly random string of decimal digits.
func GenerateNumericCode(length int) (string, error) {
	return randomFromCharset("0123456789", length)
}

func GenerateResetCode() (string, error) {
	return GenerateNumericCode(ResetCodeLength)
}

func randomFromCharset(charset string, length int) (string, error) {
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}

func HashString(input string) string {
	hasher := sha256.New()
	hasher.Write([]byte(input))
	return hex.EncodeToString(hasher.Sum(nil))
}

// MatchesHash compares input against a HashString digest in constant time.
func MatchesHash(input, expectedHash string) bool {
	if expectedHash == "" {
		return false
	}
	actual := HashString(input)
	return subtle.ConstantTimeCompare([]byte(actual), []byte(expectedHash)) == 1
}
