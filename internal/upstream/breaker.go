package upstream

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrCircuitOpen is returned without calling out while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerState represents the current state of the circuit breaker
type CircuitBreakerState int

const (
	StateClosed CircuitBreakerState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitBreakerState) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "CLOSED"
	}
}

// CircuitBreaker stops calling a third-party API after repeated failures and
// probes it again once resetTimeout has passed.
type CircuitBreaker struct {
	name              string
	logger            *logrus.Logger
	state             CircuitBreakerState
	failureCount      int
	successCount      int
	lastFailureTime   time.Time
	mu                sync.Mutex
	maxFailures       int           // Open circuit after N consecutive failures
	resetTimeout      time.Duration // Wait before trying half-open
	halfOpenSuccesses int           // Required successes to close circuit
	now               func() time.Time
}

// NewCircuitBreaker creates a breaker for the named upstream
func NewCircuitBreaker(name string, maxFailures int, resetTimeout time.Duration, logger *logrus.Logger) *CircuitBreaker {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &CircuitBreaker{
		name:              name,
		logger:            logger,
		state:             StateClosed,
		maxFailures:       maxFailures,
		resetTimeout:      resetTimeout,
		halfOpenSuccesses: 1,
		now:               time.Now,
	}
}

// Execute runs fn unless the circuit is open. Only errors for which
// countsAsFailure returns true move the breaker towards open; a 404 from a
// healthy upstream is not an outage.
func (cb *CircuitBreaker) Execute(fn func() error, countsAsFailure func(error) bool) error {
	if err := cb.allow(); err != nil {
		return err
	}

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil && countsAsFailure(err) {
		cb.onFailure(err)
		return err
	}

	cb.onSuccess()
	return err
}

func (cb *CircuitBreaker) allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != StateOpen {
		return nil
	}

	if cb.now().Sub(cb.lastFailureTime) > cb.resetTimeout {
		cb.state = StateHalfOpen
		cb.successCount = 0
		cb.logger.WithField("upstream", cb.name).Info("Circuit breaker: OPEN → HALF_OPEN (retry attempt)")
		return nil
	}

	return fmt.Errorf("%s: %w", cb.name, ErrCircuitOpen)
}

// onFailure handles a failed call; caller holds mu
func (cb *CircuitBreaker) onFailure(err error) {
	cb.failureCount++
	cb.lastFailureTime = cb.now()

	switch cb.state {
	case StateClosed:
		if cb.failureCount >= cb.maxFailures {
			cb.state = StateOpen
			cb.logger.WithFields(logrus.Fields{
				"upstream":      cb.name,
				"failure_count": cb.failureCount,
				"error":         err.Error(),
			}).Error("Circuit breaker: CLOSED → OPEN")
		}

	case StateHalfOpen:
		cb.state = StateOpen
		cb.failureCount = 0
		cb.logger.WithError(err).WithField("upstream", cb.name).Error("Circuit breaker: HALF_OPEN → OPEN (still unhealthy)")
	}
}

// onSuccess handles a successful call; caller holds mu
func (cb *CircuitBreaker) onSuccess() {
	cb.successCount++

	switch cb.state {
	case StateClosed:
		cb.failureCount = 0

	case StateHalfOpen:
		if cb.successCount >= cb.halfOpenSuccesses {
			cb.state = StateClosed
			cb.failureCount = 0
			cb.successCount = 0
			cb.logger.WithField("upstream", cb.name).Info("Circuit breaker: HALF_OPEN → CLOSED (recovered)")
		}
	}
}

// Name is the upstream the breaker guards.
func (cb *CircuitBreaker) Name() string {
	return cb.name
}

// GetState returns the current circuit breaker state
func (cb *CircuitBreaker) GetState() CircuitBreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// GetStats returns current circuit breaker statistics
func (cb *CircuitBreaker) GetStats() map[string]interface{} {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return map[string]interface{}{
		"state":         cb.state.String(),
		"failure_count": cb.failureCount,
		"max_failures":  cb.maxFailures,
		"last_failure":  cb.lastFailureTime,
		"reset_timeout": cb.resetTimeout.String(),
	}
}
