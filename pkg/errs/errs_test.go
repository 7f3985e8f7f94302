package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSeatsGone = Conflict("CAPACITY_EXCEEDED", "not enough seats")

func TestErrorMatching(t *testing.T) {
	t.Run("copy with details still matches sentinel", func(t *testing.T) {
		err := errSeatsGone.WithDetail("remaining", 1).WithDetail("requested", 2)

		assert.ErrorIs(t, err, errSeatsGone)
		assert.Equal(t, 1, err.Details["remaining"])
		assert.Equal(t, 2, err.Details["requested"])
		assert.Nil(t, errSeatsGone.Details)
	})

	t.Run("wrapped with fmt.Errorf", func(t *testing.T) {
		err := fmt.Errorf("create booking: %w", errSeatsGone)

		assert.ErrorIs(t, err, errSeatsGone)
		assert.Equal(t, KindConflict, KindOf(err))
	})

	t.Run("different reason does not match", func(t *testing.T) {
		other := Conflict("ALREADY_BOOKED", "already booked")
		assert.False(t, errors.Is(other, errSeatsGone))
	})

	t.Run("cause is reachable", func(t *testing.T) {
		cause := errors.New("dial tcp: timeout")
		err := Provider("PROVIDER_UNAVAILABLE", "payment provider unavailable").Wrap(cause)

		assert.ErrorIs(t, err, cause)
		assert.True(t, IsRetryable(err))
		assert.Contains(t, err.Error(), "dial tcp")
	})
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindValidation, KindOf(ErrInvalidInput))

	e, ok := As(fmt.Errorf("outer: %w", ErrInvalidInput.WithMessage("quantity must be at least 1")))
	require.True(t, ok)
	assert.Equal(t, "quantity must be at least 1", e.Message)
	assert.Equal(t, "validation", e.Kind.String())
}
