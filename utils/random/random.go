package random

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUIDString returns a random (v4) UUID in canonical form.
func GenerateUUIDString() string {
	return uuid.New().String()
}

// JoinComponentsToID joins multiple strings into a single ID
func JoinComponentsToID(components ...string) string {
	return strings.Join(components, "-")
}

// GenerateRandomAlphanumeric generates a random alphanumeric string of `n` length
func GenerateRandomAlphanumeric(n int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	if n <= 0 {
		n = 10
	}

	var sb strings.Builder
	sb.Grow(n)

	for i := 0; i < n; i++ {
		index, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		sb.WriteByte(charset[index.Int64()])
	}

	return sb.String(), nil
}

// ConsumerTag builds a broker consumer tag such as "relay-compose.service.basic.result-Xy12ab".
func ConsumerTag(prefix, queue string) string {
	suffix, err := GenerateRandomAlphanumeric(6)
	if err != nil {
		suffix = GenerateUUIDString()[:8]
	}
	return JoinComponentsToID(prefix, queue, suffix)
}
