// Package circuitbreaker implements the circuit breaker pattern for
// outbound calls. When a dependency keeps failing the breaker opens and
// rejects calls immediately instead of letting every request time out.
package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// State represents the current state of the breaker.
type State int

const (
	// StateClosed means calls flow through normally.
	StateClosed State = iota
	// StateOpen means calls are rejected without being executed.
	StateOpen
	// StateHalfOpen means a limited number of probe calls are allowed.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

var (
	// ErrCircuitOpen is returned when the breaker rejects a call.
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrTooManyProbes is returned when the half-open probe budget is spent.
	ErrTooManyProbes = errors.New("too many probe requests in half-open state")
)

// Counts holds the rolling statistics of the current state.
type Counts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

// Config holds circuit breaker configuration.
type Config struct {
	// FailureThreshold is the number of consecutive failures that opens
	// the breaker.
	FailureThreshold uint32
	// SuccessThreshold is the number of consecutive probe successes in
	// half-open state that closes the breaker again.
	SuccessThreshold uint32
	// OpenTimeout is how long the breaker stays open before allowing
	// probe requests.
	OpenTimeout time.Duration
	// MaxProbes is how many concurrent requests half-open state admits.
	MaxProbes uint32
	// OnStateChange is called on every transition, if set.
	OnStateChange func(name string, from, to State)
}

// DefaultConfig returns a sensible default breaker configuration.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
		MaxProbes:        1,
	}
}

// Option configures a breaker Config.
type Option func(*Config)

// WithFailureThreshold sets how many consecutive failures open the breaker.
func WithFailureThreshold(n uint32) Option {
	return func(c *Config) { c.FailureThreshold = n }
}

// WithSuccessThreshold sets how many probe successes close the breaker.
func WithSuccessThreshold(n uint32) Option {
	return func(c *Config) { c.SuccessThreshold = n }
}

// WithOpenTimeout sets how long the breaker stays open.
func WithOpenTimeout(d time.Duration) Option {
	return func(c *Config) { c.OpenTimeout = d }
}

// WithMaxProbes sets the half-open probe budget.
func WithMaxProbes(n uint32) Option {
	return func(c *Config) { c.MaxProbes = n }
}

// WithStateChangeHook sets the transition callback.
func WithStateChangeHook(fn func(name string, from, to State)) Option {
	return func(c *Config) { c.OnStateChange = fn }
}

// CircuitBreaker protects a single downstream dependency.
type CircuitBreaker struct {
	name   string
	config Config

	mu       sync.Mutex
	state    State
	counts   Counts
	openedAt time.Time
	now      func() time.Time
}

// New creates a circuit breaker with the given options applied over defaults.
func New(name string, opts ...Option) *CircuitBreaker {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &CircuitBreaker{
		name:   name,
		config: cfg,
		state:  StateClosed,
		now:    time.Now,
	}
}

// Name returns the breaker name.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// State returns the current state, transitioning open to half-open when
// the open timeout has elapsed.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.refreshState()
	return cb.state
}

// Counts returns a copy of the current statistics.
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.counts
}

// Execute runs fn through the breaker. When the breaker is open the call
// is rejected with ErrCircuitOpen without invoking fn.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := fn(ctx)

	// Cancellation says nothing about the health of the dependency.
	if errors.Is(err, context.Canceled) {
		return err
	}

	cb.afterRequest(err == nil)
	return err
}

// Reset forces the breaker back to closed and clears the statistics.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transition(StateClosed)
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.refreshState()

	switch cb.state {
	case StateOpen:
		return fmt.Errorf("%s: %w", cb.name, ErrCircuitOpen)
	case StateHalfOpen:
		if cb.counts.Requests >= cb.config.MaxProbes {
			return fmt.Errorf("%s: %w", cb.name, ErrTooManyProbes)
		}
	}

	cb.counts.Requests++
	return nil
}

func (cb *CircuitBreaker) afterRequest(success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.refreshState()

	if success {
		cb.onSuccess()
	} else {
		cb.onFailure()
	}
}

func (cb *CircuitBreaker) onSuccess() {
	cb.counts.TotalSuccesses++
	cb.counts.ConsecutiveSuccesses++
	cb.counts.ConsecutiveFailures = 0

	if cb.state == StateHalfOpen && cb.counts.ConsecutiveSuccesses >= cb.config.SuccessThreshold {
		cb.transition(StateClosed)
	}
}

func (cb *CircuitBreaker) onFailure() {
	cb.counts.TotalFailures++
	cb.counts.ConsecutiveFailures++
	cb.counts.ConsecutiveSuccesses = 0

	switch cb.state {
	case StateClosed:
		if cb.counts.ConsecutiveFailures >= cb.config.FailureThreshold {
			cb.transition(StateOpen)
		}
	case StateHalfOpen:
		// A failed probe sends the breaker straight back to open.
		cb.transition(StateOpen)
	}
}

// refreshState moves open to half-open once the open timeout has elapsed.
// Callers must hold cb.mu.
func (cb *CircuitBreaker) refreshState() {
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.config.OpenTimeout {
		cb.transition(StateHalfOpen)
	}
}

// transition changes state and resets the statistics. Callers must hold cb.mu.
func (cb *CircuitBreaker) transition(to State) {
	if cb.state == to {
		cb.counts = Counts{}
		return
	}

	from := cb.state
	cb.state = to
	cb.counts = Counts{}

	if to == StateOpen {
		cb.openedAt = cb.now()
	}

	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(cb.name, from, to)
	}
}
