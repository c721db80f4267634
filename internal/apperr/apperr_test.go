// ABOUTME: Tests for typed error kinds.
// ABOUTME: Verifies errors.Is matching, wrapping and KindOf.
package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKind(t *testing.T) {
	err := Validation("add check-in", errors.New("weightKg must be positive"))

	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrStorage))
	assert.False(t, errors.Is(err, ErrImportFormat))
}

func TestIsThroughWrapping(t *testing.T) {
	base := Storage("list meals", errors.New("disk I/O error"))
	wrapped := fmt.Errorf("refresh meals: %w", base)

	assert.True(t, errors.Is(wrapped, ErrStorage))
	assert.Equal(t, KindStorage, KindOf(wrapped))
}

func TestNewNil(t *testing.T) {
	assert.NoError(t, New(KindStorage, "op", nil))
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
}

func TestErrorMessage(t *testing.T) {
	err := NotFound("get goal", "abc")
	assert.Equal(t, `get goal: not found: no match for "abc"`, err.Error())
	assert.True(t, errors.Is(err, ErrNotFound))
}
