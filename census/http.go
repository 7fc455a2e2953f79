package census

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

type httpHandler struct {
	engine *Engine
	store  Store
	logger Logger
}

// NewHTTPHandler builds the query boundary:
//
//   GET  /       — single lookup, ?ipv4=&includeStopped=&includeBlocked=
//   POST /       — bulk lookup, JSON body
//   GET  /stats  — lookup counters and snapshot info
func NewHTTPHandler(engine *Engine, store Store, logger Logger) http.Handler {
	handler := httpHandler{
		engine: engine,
		store:  store,
		logger: logger,
	}

	router := chi.NewRouter()

	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.Recoverer)
	router.Use(middleware.RealIP)

	router.Get("/", handler.handleGetLookup)
	router.Post("/", handler.handlePostLookup)
	router.Get("/stats", handler.handleGetStats)

	return router
}

func (h httpHandler) encodeJSON(w http.ResponseWriter, data interface{}) {
	encoder := json.NewEncoder(w)

	w.Header().Set("Content-Type", "application/json")
	encoder.SetEscapeHTML(false)
	encoder.Encode(data) // nolint: errcheck
}

func (h httpHandler) sendError(w http.ResponseWriter, err error, message string, statusCode int) {
	e := &httpError{
		message:    message,
		statusCode: statusCode,
		err:        err,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode())

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.Encode(e) // nolint: errcheck
}

func (h httpHandler) sendLookupError(w http.ResponseWriter, ip string, err error) {
	switch {
	case errors.Is(err, ErrInvalidIP):
		h.sendError(w, err, "Invalid or missing ipv4 parameter", http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		h.sendError(w, err,
			"No service found for this IPv4 address with current filter settings",
			http.StatusNotFound)
	case errors.Is(err, ErrSnapshotNotReady):
		h.sendError(w, err,
			"Service data not available. Exporter job may not have run yet",
			http.StatusServiceUnavailable)
	case errors.Is(err, ErrSnapshotCorrupt):
		h.logger.LookupError(ip, err)
		h.sendError(w, err, "Failed to parse service data file", http.StatusInternalServerError)
	default:
		h.logger.LookupError(ip, err)
		h.sendError(w, err, "Cannot look up this address", http.StatusInternalServerError)
	}
}

// parseBoolToken understands the usual boolean spellings. Anything
// else, including an absent value, means "include": filters are
// inclusive by default.
func parseBoolToken(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "0", "false", "no", "off":
		return false
	}

	return true
}
