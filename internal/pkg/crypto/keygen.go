// Package crypto provides random identifier utilities for the storefront.
package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// orderSuffixChars contains characters used in order id suffixes
// (uppercase alphanumeric, unambiguous).
const orderSuffixChars = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// OrderSuffixLength is the length of the random order id suffix.
const OrderSuffixLength = 4

// GenerateOrderID generates a time-based, unique order identifier.
// Format: "ORD-<unix milliseconds>-<random suffix>". The millisecond
// prefix keeps ids sortable by creation time; the suffix disambiguates
// orders placed within the same millisecond.
func GenerateOrderID(now time.Time) (string, error) {
	suffix, err := generateRandomString(OrderSuffixLength, orderSuffixChars)
	if err != nil {
		return "", fmt.Errorf("failed to generate order id suffix: %w", err)
	}
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), suffix), nil
}

// GenerateResetToken generates a random 32-byte password reset token
// as a 64-character hex string.
func GenerateResetToken() (string, error) {
	token := make([]byte, 32)
	if _, err := rand.Read(token); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(token), nil
}

// generateRandomString generates a random string of the specified length
// using characters from the provided character set.
func generateRandomString(length int, charset string) (string, error) {
	result := make([]byte, length)
	charsetLen := len(charset)

	randomBytes := make([]byte, length)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	for i := 0; i < length; i++ {
		result[i] = charset[int(randomBytes[i])%charsetLen]
	}

	return string(result), nil
}
