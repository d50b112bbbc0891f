package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errGatewayDown = errors.New("gateway down")

func failing(ctx context.Context) error { return errGatewayDown }

func succeeding(ctx context.Context) error { return nil }

func newTestBreaker(t *testing.T) (*CircuitBreaker, *time.Time) {
	t.Helper()
	at := time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)
	cb := New("test",
		WithFailureThreshold(3),
		WithSuccessThreshold(2),
		WithOpenTimeout(10*time.Second),
		WithMaxProbes(1),
	)
	cb.now = func() time.Time { return at }
	return cb, &at
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb, _ := newTestBreaker(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := cb.Execute(ctx, failing)
		require.ErrorIs(t, err, errGatewayDown)
	}

	assert.Equal(t, StateOpen, cb.State())

	err := cb.Execute(ctx, failing)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb, _ := newTestBreaker(t)
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, failing))
	require.Error(t, cb.Execute(ctx, failing))
	require.NoError(t, cb.Execute(ctx, succeeding))
	require.Error(t, cb.Execute(ctx, failing))
	require.Error(t, cb.Execute(ctx, failing))

	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenProbeClosesOnSuccess(t *testing.T) {
	cb, at := newTestBreaker(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.Error(t, cb.Execute(ctx, failing))
	}
	require.Equal(t, StateOpen, cb.State())

	*at = at.Add(11 * time.Second)
	assert.Equal(t, StateHalfOpen, cb.State())

	require.NoError(t, cb.Execute(ctx, succeeding))
	require.NoError(t, cb.Execute(ctx, succeeding))

	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenProbeReopensOnFailure(t *testing.T) {
	cb, at := newTestBreaker(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.Error(t, cb.Execute(ctx, failing))
	}

	*at = at.Add(11 * time.Second)
	require.Equal(t, StateHalfOpen, cb.State())

	require.ErrorIs(t, cb.Execute(ctx, failing), errGatewayDown)
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_HalfOpenLimitsProbes(t *testing.T) {
	cb, at := newTestBreaker(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.Error(t, cb.Execute(ctx, failing))
	}
	*at = at.Add(11 * time.Second)
	require.Equal(t, StateHalfOpen, cb.State())

	started := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- cb.Execute(ctx, func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	err := cb.Execute(ctx, succeeding)
	assert.ErrorIs(t, err, ErrTooManyProbes)

	close(release)
	require.NoError(t, <-done)
}

func TestCircuitBreaker_CancellationDoesNotCount(t *testing.T) {
	cb, _ := newTestBreaker(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := cb.Execute(ctx, func(ctx context.Context) error {
			return context.Canceled
		})
		require.ErrorIs(t, err, context.Canceled)
	}

	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_StateChangeHook(t *testing.T) {
	var transitions []string
	cb := New("hooked",
		WithFailureThreshold(1),
		WithOpenTimeout(time.Hour),
		WithStateChangeHook(func(name string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		}),
	)

	require.Error(t, cb.Execute(context.Background(), failing))
	assert.Equal(t, []string{"closed->open"}, transitions)
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb, _ := newTestBreaker(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.Error(t, cb.Execute(ctx, failing))
	}
	require.Equal(t, StateOpen, cb.State())

	cb.Reset()
	assert.Equal(t, StateClosed, cb.State())
	require.NoError(t, cb.Execute(ctx, succeeding))
}
