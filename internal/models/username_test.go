package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateUsernameBase(t *testing.T) {
	never := func(string) (bool, error) { return false, nil }

	username, err := GenerateUsername("Albert", "Gator", never)
	assert.NoError(t, err)
	assert.Equal(t, "albertgator", username)

	username, err = GenerateUsername("Mary Ann", "Van Der Berg", never)
	assert.NoError(t, err)
	assert.Equal(t, "maryannvanderberg", username)
}

func TestGenerateUsernameEmptyNameFallsBack(t *testing.T) {
	never := func(string) (bool, error) { return false, nil }

	username, err := GenerateUsername("  ", "", never)
	assert.NoError(t, err)
	assert.Equal(t, "user", username)
}

func TestGenerateUsernameCollisionAddsSuffix(t *testing.T) {
	calls := 0
	exists := func(candidate string) (bool, error) {
		calls++
		return candidate == "albertgator", nil
	}

	username, err := GenerateUsername("Albert", "Gator", exists)
	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(username, "albertgator-"))
	assert.GreaterOrEqual(t, calls, 2)
}

func TestGenerateUsernamePropagatesLookupError(t *testing.T) {
	lookupErr := errors.New("connection reset")
	failing := func(string) (bool, error) { return false, lookupErr }

	_, err := GenerateUsername("Albert", "Gator", failing)
	assert.ErrorIs(t, err, lookupErr)
}

func TestGenerateUsernameExhaustedSuffixSpace(t *testing.T) {
	always := func(string) (bool, error) { return true, nil }

	_, err := GenerateUsername("Albert", "Gator", always)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "albertgator")
}
