package census

import (
	"net/http"
	"sync"
	"time"
)

const (
	circuitBreakerStateClosed = iota
	circuitBreakerStateHalfOpened
	circuitBreakerStateOpened
)

type circuitBreakerCallback func() (*http.Response, error)

// circuitBreaker shields the upstream API from request storms when it
// is down. After openThreshold consecutive-ish failures it rejects
// calls outright; after halfOpenTimeout a single probe is let through
// and its outcome decides between closing again and staying open.
// Failures older than resetFailuresTimeout do not count.
type circuitBreaker struct {
	mutex sync.Mutex

	state       int
	failures    uint32
	openedAt    time.Time
	lastFailure time.Time

	openThreshold        uint32
	halfOpenTimeout      time.Duration
	resetFailuresTimeout time.Duration
}

func (c *circuitBreaker) Do(callback circuitBreakerCallback) (*http.Response, error) {
	if err := c.allow(); err != nil {
		return nil, err
	}

	resp, err := callback()
	c.observe(err)

	return resp, err
}

func (c *circuitBreaker) allow() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := time.Now()

	switch c.state {
	case circuitBreakerStateOpened:
		if now.Sub(c.openedAt) < c.halfOpenTimeout {
			return ErrCircuitBreakerOpened
		}

		// this caller becomes the probe
		c.state = circuitBreakerStateHalfOpened

		return nil
	case circuitBreakerStateHalfOpened:
		return ErrCircuitBreakerOpened
	}

	if c.failures > 0 && now.Sub(c.lastFailure) >= c.resetFailuresTimeout {
		c.failures = 0
	}

	return nil
}

func (c *circuitBreaker) observe(err error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.state == circuitBreakerStateHalfOpened {
		if err != nil {
			c.state = circuitBreakerStateOpened
			c.openedAt = time.Now()
		} else {
			c.state = circuitBreakerStateClosed
			c.failures = 0
		}

		return
	}

	if err == nil {
		c.failures = 0

		return
	}

	c.failures += 1
	c.lastFailure = time.Now()

	if c.failures > c.openThreshold {
		c.state = circuitBreakerStateOpened
		c.openedAt = c.lastFailure
	}
}

func newCircuitBreaker(openThreshold uint32,
	halfOpenTimeout, resetFailuresTimeout time.Duration) *circuitBreaker {
	return &circuitBreaker{
		openThreshold:        openThreshold,
		halfOpenTimeout:      halfOpenTimeout,
		resetFailuresTimeout: resetFailuresTimeout,
	}
}
