package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKey(t *testing.T) {
	key, err := GenerateKey("sk-fc-", 16)

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "sk-fc-"))
	assert.Len(t, key, len("sk-fc-")+16)
	for _, c := range key[len("sk-fc-"):] {
		assert.Contains(t, base62Chars, string(c))
	}
}

func TestGenerateKey_DefaultLength(t *testing.T) {
	key, err := GenerateKey("", DefaultKeyLength)

	assert.NoError(t, err)
	assert.Len(t, key, DefaultKeyLength)
}
