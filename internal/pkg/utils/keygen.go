package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const base62Chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultKeyLength is the random suffix length used for Fieldcost bearer
// tokens.
const DefaultKeyLength = 48

// GenerateKey mints prefix followed by n random base62 characters drawn
// from crypto/rand. Only the sha256 of the result is ever stored.
func GenerateKey(prefix string, n int) (string, error) {
	var sb strings.Builder
	sb.WriteString(prefix)

	for range n {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(base62Chars))))
		if err != nil {
			return "", err
		}
		sb.WriteByte(base62Chars[num.Int64()])
	}

	return sb.String(), nil
}
