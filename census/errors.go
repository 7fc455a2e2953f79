package census

import (
	"encoding/json"
	"errors"
	"net/http"
)

var (
	// ErrSnapshotNotReady means no snapshot has ever been published.
	// A normal condition on a fresh deployment, not a data error.
	ErrSnapshotNotReady = errors.New("snapshot has not been published yet")

	// ErrSnapshotCorrupt means a snapshot file exists but cannot be
	// parsed.
	ErrSnapshotCorrupt = errors.New("snapshot file is corrupt")

	// ErrNotFound means the address is absent from the snapshot or
	// filtered out by the current filter settings.
	ErrNotFound = errors.New("no service found for this address")

	// ErrInvalidIP means the caller did not supply a syntactically
	// valid dotted-quad IPv4 address.
	ErrInvalidIP = errors.New("not a valid ipv4 address")

	// ErrEmptyBuild guards readers against an upstream outage which
	// reports zero customers with a success status.
	ErrEmptyBuild = errors.New("build produced no eligible records")

	ErrCircuitBreakerOpened = errors.New("circuit breaker is opened")
)

// httpError is what every error response of the query boundary looks
// like on the wire: the message is the stable, documented text, the
// context carries the underlying error for debugging.
type httpError struct {
	message    string
	err        error
	statusCode int
}

func (h *httpError) StatusCode() int {
	if h.statusCode == 0 {
		return http.StatusInternalServerError
	}

	return h.statusCode
}

func (h *httpError) Unwrap() error {
	return h.err
}

func (h *httpError) Error() string {
	if h.err != nil {
		return h.message + ": " + h.err.Error()
	}

	return h.message
}

func (h *httpError) MarshalJSON() ([]byte, error) {
	value := struct {
		Error struct {
			Message string `json:"message"`
			Context string `json:"context"`
		} `json:"error"`
	}{}

	value.Error.Message = h.message
	if h.err != nil {
		value.Error.Context = h.err.Error()
	}

	return json.Marshal(&value)
}
