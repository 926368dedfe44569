package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("still in use")

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, 0, func(error) bool { return true }, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 5, 0, func(err error) bool { return errors.Is(err, errTransient) }, func() error {
		calls++
		if calls < 3 {
			return errTransient
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_NonRetryableFailsImmediately(t *testing.T) {
	fatal := errors.New("access denied")
	calls := 0
	err := Do(context.Background(), 5, 0, func(err error) bool { return errors.Is(err, errTransient) }, func() error {
		calls++
		return fatal
	})
	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDo_BudgetExceeded(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 30, 0, func(error) bool { return true }, func() error {
		calls++
		return errTransient
	})
	assert.ErrorIs(t, err, ErrBudgetExceeded)
	assert.Equal(t, 30, calls)
	assert.Contains(t, err.Error(), "still in use")
}

func TestDo_ContextCanceledDuringPause(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Do(ctx, 3, time.Minute, func(error) bool { return true }, func() error {
		calls++
		return errTransient
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
