package pkg

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRoomCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{4}$`)

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		// When: a code is generated
		code, err := GenerateRoomCode()

		// Then: it is four uppercase alphanumerics
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
		seen[code] = struct{}{}
	}

	// Then: codes are not constant
	assert.Greater(t, len(seen), 1)
}

func TestGenerateNewSessionID(t *testing.T) {
	first := GenerateNewSessionID()
	second := GenerateNewSessionID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestNormalizeRoomCode(t *testing.T) {
	assert.Equal(t, "AB12", NormalizeRoomCode("  ab12 "))
	assert.Equal(t, "", NormalizeRoomCode(""))
}
