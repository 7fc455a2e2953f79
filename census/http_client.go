package census

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

type httpClient struct {
	userAgent      string
	client         *http.Client
	rateLimiter    *rate.Limiter
	circuitBreaker *circuitBreaker
}

func (h httpClient) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", h.userAgent)

	if err := h.rateLimiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("cannot pass the rate limiter: %w", err)
	}

	return h.circuitBreaker.Do(func() (*http.Response, error) {
		resp, err := h.client.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= http.StatusBadRequest {
			io.Copy(io.Discard, resp.Body) // nolint: errcheck
			resp.Body.Close()

			return nil, fmt.Errorf("endpoint has responded with %s", resp.Status)
		}

		return resp, nil
	})
}

// NewHTTPClient wraps a plain http.Client with a user agent, a rate
// limiter and a circuit breaker. Every upstream request of this
// module goes through such a wrapper: this is the whole retry/backoff
// policy of the export job, the builder itself never retries.
//
// Rate limiter parameters follow golang.org/x/time/rate: one request
// token per rateLimiterInterval with a burst of rateLimitBurst.
//
// The circuit breaker opens after openThreshold failures, lets one
// probe through after halfOpenTimeout and forgets failures older than
// resetFailuresTimeout.
func NewHTTPClient(client *http.Client,
	userAgent string,
	rateLimiterInterval time.Duration,
	rateLimitBurst int,
	openThreshold uint32,
	halfOpenTimeout, resetFailuresTimeout time.Duration) HTTPClient {
	return httpClient{
		userAgent:      userAgent,
		client:         client,
		rateLimiter:    rate.NewLimiter(rate.Every(rateLimiterInterval), rateLimitBurst),
		circuitBreaker: newCircuitBreaker(openThreshold, halfOpenTimeout, resetFailuresTimeout),
	}
}
