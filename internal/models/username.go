package models

import (
	"fmt"
	"math/rand"
	"strings"
)

const usernameSuffixAttempts = 10

// GenerateUsername derives a unique username from the user's name. The base
// is the lowercased concatenation of first and last name with whitespace
// removed. On collision it retries with a random numeric suffix, widening
// the suffix range after repeated collisions. exists reports whether a
// candidate is already taken.
func GenerateUsername(firstName, lastName string, exists func(string) (bool, error)) (string, error) {
	base := strings.ToLower(strings.Join(strings.Fields(firstName+lastName), ""))
	if base == "" {
		base = "user"
	}

	taken, err := exists(base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}

	for i := 0; i < usernameSuffixAttempts; i++ {
		candidate := fmt.Sprintf("%s-%d", base, rand.Intn(1000))
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	// The small suffix space is crowded for this base; widen it.
	candidate := fmt.Sprintf("%s-%d", base, rand.Intn(1000000))
	taken, err = exists(candidate)
	if err != nil {
		return "", err
	}
	if taken {
		return "", fmt.Errorf("could not generate a unique username for %q", base)
	}
	return candidate, nil
}
