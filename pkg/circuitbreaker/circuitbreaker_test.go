package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTestError = errors.New("test error")

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestBreaker(cfg Config) (*CircuitBreaker, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	cb := New(cfg)
	cb.now = clock.Now
	cb.stateChangeTime = clock.Now()
	return cb, clock
}

func fail(context.Context) error    { return errTestError }
func succeed(context.Context) error { return nil }

func TestCircuitBreaker_ClosedState_Success(t *testing.T) {
	cb, _ := newTestBreaker(DefaultConfig())

	err := cb.Execute(context.Background(), succeed)
	assert.NoError(t, err)
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreaker_ReturnsCallerErrorUnchanged(t *testing.T) {
	cb, _ := newTestBreaker(DefaultConfig())

	err := cb.Execute(context.Background(), fail)
	assert.Same(t, errTestError, err)
	assert.Equal(t, StateClosed, cb.GetState())
	assert.Equal(t, 1, cb.GetStats().FailureCount)
}

func TestCircuitBreaker_OpensAfterThresholdAndRejects(t *testing.T) {
	cb, _ := newTestBreaker(Config{FailureThreshold: 2, Timeout: time.Second})
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, fail)
	require.Equal(t, StateOpen, cb.GetState())

	called := false
	err := cb.Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called, "open breaker must not invoke the function")
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb, _ := newTestBreaker(Config{FailureThreshold: 2, Timeout: time.Second})
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, succeed)
	_ = cb.Execute(ctx, fail)

	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreaker_HalfOpenProbeCloses(t *testing.T) {
	cb, clock := newTestBreaker(Config{FailureThreshold: 1, SuccessThreshold: 1, Timeout: time.Second})
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	require.Equal(t, StateOpen, cb.GetState())

	clock.Advance(time.Second)
	require.NoError(t, cb.Execute(ctx, succeed))
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb, clock := newTestBreaker(Config{FailureThreshold: 1, Timeout: time.Second})
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	clock.Advance(time.Second)

	assert.ErrorIs(t, cb.Execute(ctx, fail), errTestError)
	assert.Equal(t, StateOpen, cb.GetState())
	assert.ErrorIs(t, cb.Execute(ctx, succeed), ErrOpen)
}

func TestCircuitBreaker_HalfOpenLimitsProbes(t *testing.T) {
	cb, clock := newTestBreaker(Config{
		FailureThreshold:    1,
		SuccessThreshold:    2,
		Timeout:             time.Second,
		MaxRequestsHalfOpen: 1,
	})
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	clock.Advance(time.Second)

	// The first probe is still in flight when the second call arrives.
	err := cb.Execute(ctx, func(ctx context.Context) error {
		return cb.Execute(ctx, succeed)
	})
	assert.ErrorIs(t, err, ErrOpen)
}

func TestCircuitBreaker_CancelledCallIsNotAFailure(t *testing.T) {
	cb, _ := newTestBreaker(Config{FailureThreshold: 1, Timeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cb.Execute(ctx, func(ctx context.Context) error { return ctx.Err() })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCall_ReturnsTypedResult(t *testing.T) {
	cb, _ := newTestBreaker(DefaultConfig())

	body, err := Call(context.Background(), cb, func(context.Context) ([]byte, error) {
		return []byte(`{"results":[]}`), nil
	})
	require.NoError(t, err)
	assert.Equal(t, `{"results":[]}`, string(body))
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	cb, clock := newTestBreaker(Config{FailureThreshold: 1, Timeout: time.Second})
	ctx := context.Background()

	var transitions []string
	cb.OnStateChange(func(from, to State) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	_ = cb.Execute(ctx, fail)
	clock.Advance(time.Second)
	_ = cb.Execute(ctx, succeed)

	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, transitions)
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb, _ := newTestBreaker(Config{FailureThreshold: 1, Timeout: time.Hour})
	_ = cb.Execute(context.Background(), fail)
	require.Equal(t, StateOpen, cb.GetState())

	cb.Reset()

	stats := cb.GetStats()
	assert.Equal(t, StateClosed, stats.State)
	assert.Zero(t, stats.FailureCount)
	assert.NoError(t, cb.Execute(context.Background(), succeed))
}

func TestCircuitBreaker_IgnoresErrorsOutsideFailurePredicate(t *testing.T) {
	errRejected := errors.New("rejected by provider")
	cb, _ := newTestBreaker(Config{
		FailureThreshold: 1,
		Timeout:          time.Hour,
		IsFailure:        func(err error) bool { return !errors.Is(err, errRejected) },
	})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := cb.Execute(ctx, func(context.Context) error { return errRejected })
		assert.Same(t, errRejected, err)
	}
	assert.Equal(t, StateClosed, cb.GetState())
	assert.Equal(t, 0, cb.GetStats().FailureCount)

	_ = cb.Execute(ctx, fail)
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestCircuitBreaker_HalfOpenClosesOnNonFailureError(t *testing.T) {
	errRejected := errors.New("rejected by provider")
	cb, clock := newTestBreaker(Config{
		FailureThreshold: 1,
		Timeout:          time.Second,
		IsFailure:        func(err error) bool { return !errors.Is(err, errRejected) },
	})
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	require.Equal(t, StateOpen, cb.GetState())
	clock.Advance(2 * time.Second)

	_ = cb.Execute(ctx, func(context.Context) error { return errRejected })
	assert.Equal(t, StateClosed, cb.GetState())
}
