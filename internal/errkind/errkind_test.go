package errkind_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schevalier/flocker/internal/errkind"
)

func TestIsFollowsUnwrapChain(t *testing.T) {
	base := errkind.NewTransientIO("dial failed", nil)
	wrapped := fmt.Errorf("tick failed: %w", base)

	assert.True(t, errkind.Is(wrapped, errkind.TransientIO))
	assert.False(t, errkind.Is(wrapped, errkind.Configuration))
}

func TestIsFalseOnPlainError(t *testing.T) {
	assert.False(t, errkind.Is(fmt.Errorf("plain"), errkind.Configuration))
}

func TestErrorMessageIncludesApplication(t *testing.T) {
	err := errkind.NewConfigurationError("web", "image must be repo:tag")
	assert.Contains(t, err.Error(), "web")
	assert.Contains(t, err.Error(), "ConfigurationError")
}

func TestNewRuntimeConflictUnwrapsToCause(t *testing.T) {
	cause := fmt.Errorf("name already in use")
	err := errkind.NewRuntimeConflict("web", cause)
	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errkind.Is(err, errkind.RuntimeConflict))
}

func TestNewOwnershipError(t *testing.T) {
	err := errkind.NewOwnershipError("data")
	assert.True(t, errkind.Is(err, errkind.Ownership))
	assert.Contains(t, err.Error(), "data")
}
