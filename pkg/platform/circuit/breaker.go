// Package circuit provides a two-state circuit breaker for dependencies
// that have a degraded fallback path.
package circuit

import "sync"

// State is the breaker position.
type State int

const (
	// StateClosed: the dependency is considered healthy.
	StateClosed State = iota
	// StateOpen: consecutive failures tripped the breaker; callers should
	// take their fallback path.
	StateOpen
)

// StateChange reports a transition caused by a Record call. At most one
// field is set.
type StateChange struct {
	Opened bool
	Closed bool
}

// Breaker counts consecutive outcomes of calls against one dependency.
// It opens after a run of failures and closes again after a run of
// successes recorded while open. There is no timer: callers keep attempting
// the dependency and those attempts double as recovery probes.
type Breaker struct {
	mu         sync.Mutex
	state      State
	name       string
	failures   int
	successes  int
	openAfter  int
	closeAfter int
}

// Option configures a Breaker.
type Option func(*Breaker)

// WithFailureThreshold sets how many consecutive failures open the breaker.
// Defaults to 5. Non-positive values are ignored.
func WithFailureThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.openAfter = n
		}
	}
}

// WithSuccessThreshold sets how many consecutive successes, recorded while
// open, close the breaker again. Defaults to 3. Non-positive values are
// ignored.
func WithSuccessThreshold(n int) Option {
	return func(b *Breaker) {
		if n > 0 {
			b.closeAfter = n
		}
	}
}

// New returns a closed breaker. The name labels log lines and metrics.
func New(name string, opts ...Option) *Breaker {
	b := &Breaker{
		name:       name,
		state:      StateClosed,
		openAfter:  5,
		closeAfter: 3,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Name returns the label the breaker was built with.
func (b *Breaker) Name() string {
	return b.name
}

// IsOpen reports whether the breaker has tripped.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == StateOpen
}

// State returns the current position.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// RecordFailure notes a failed call. useFallback is true once the breaker
// is open; change.Opened is true only on the call that tripped it.
func (b *Breaker) RecordFailure() (useFallback bool, change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	b.successes = 0

	if b.state == StateOpen {
		return true, StateChange{}
	}
	if b.failures >= b.openAfter {
		b.state = StateOpen
		return true, StateChange{Opened: true}
	}
	return false, StateChange{}
}

// RecordSuccess notes a successful call. usePrimary is true while closed
// and on the call that closes the breaker; change.Closed is true only on
// that closing call.
func (b *Breaker) RecordSuccess() (usePrimary bool, change StateChange) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateOpen {
		b.successes++
		if b.successes >= b.closeAfter {
			b.state = StateClosed
			b.failures = 0
			b.successes = 0
			return true, StateChange{Closed: true}
		}
		return false, StateChange{}
	}

	b.failures = 0
	return true, StateChange{}
}

// Reset forces the breaker closed and clears both runs.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateClosed
	b.failures = 0
	b.successes = 0
}
