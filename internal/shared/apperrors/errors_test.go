package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentinelWrapping(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("booking")))
	assert.True(t, IsValidation(Validationf("quantity must be at least %d", 1)))
	assert.True(t, IsCapacityConflict(Conflictf("only %d tickets available", 0)))
	assert.True(t, IsAuthorization(Authorizationf("booking %s does not belong to user", "x")))

	err := Storagef("get flight", errors.New("connection refused"))
	assert.True(t, errors.Is(err, ErrStorage))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrappedChainsSurvive(t *testing.T) {
	inner := NotFound("flight")
	outer := fmt.Errorf("loading schedule: %w", inner)

	assert.True(t, IsNotFound(outer))
	assert.False(t, IsValidation(outer))
}

func TestStorageCauseIsNotWrapped(t *testing.T) {
	cause := errors.New("deadlock detected")
	err := Storagef("claim capacity", cause)

	assert.False(t, errors.Is(err, cause))
}
