package census

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/qri-io/jsonschema"
)

var handlePostRequestJSONSchema = func() *jsonschema.Schema {
	data := `{
        "type": "object",
        "required": [
            "ips"
        ],
        "additionalProperties": false,
        "properties": {
            "ips": {
                "type": "array",
                "minItems": 1,
                "items": {
                    "type": "string",
                    "format": "ipv4",
                    "minLength": 7,
                    "maxLength": 15
                }
            },
            "include_stopped": {
                "type": "boolean"
            },
            "include_blocked": {
                "type": "boolean"
            }
        }
    }`

	rv := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(data), rv); err != nil {
		panic(err)
	}

	return rv
}()

type handlePostRequest struct {
	IPs            []string `json:"ips"`
	IncludeStopped *bool    `json:"include_stopped"`
	IncludeBlocked *bool    `json:"include_blocked"`
}

type handlePostResponse struct {
	Results map[string]*ServiceRecord `json:"results"`
}

// handlePostLookup resolves a batch of addresses in one round trip.
// A missing or filtered-out address maps to null instead of failing
// the whole request; snapshot-level problems still fail it.
func (h httpHandler) handlePostLookup(w http.ResponseWriter, req *http.Request) {
	if !strings.Contains(req.Header.Get("Content-Type"), "application/json") {
		h.sendError(w, nil, "Incorrect content type", http.StatusUnsupportedMediaType)

		return
	}

	bodyBytes, err := io.ReadAll(req.Body)

	req.Body.Close()

	if err != nil {
		h.sendError(w, err, "Cannot read request body", http.StatusBadRequest)

		return
	}

	errs, err := handlePostRequestJSONSchema.ValidateBytes(req.Context(), bodyBytes)
	if err != nil {
		h.sendError(w, err, "Cannot parse request JSON", http.StatusBadRequest)

		return
	}

	if len(errs) > 0 {
		h.sendError(w, errs[0], "Invalid request body", http.StatusBadRequest)

		return
	}

	parsedRequest := handlePostRequest{}
	if err := json.Unmarshal(bodyBytes, &parsedRequest); err != nil {
		h.sendError(w, err, "Cannot parse request JSON", http.StatusBadRequest)

		return
	}

	includeStopped := parsedRequest.IncludeStopped == nil || *parsedRequest.IncludeStopped
	includeBlocked := parsedRequest.IncludeBlocked == nil || *parsedRequest.IncludeBlocked

	response := handlePostResponse{
		Results: make(map[string]*ServiceRecord, len(parsedRequest.IPs)),
	}

	for _, ip := range parsedRequest.IPs {
		record, err := h.engine.Lookup(ip, includeStopped, includeBlocked)

		switch {
		case err == nil:
			record := record
			response.Results[ip] = &record
		case errors.Is(err, ErrNotFound):
			response.Results[ip] = nil
		case errors.Is(err, ErrInvalidIP):
			h.sendError(w, err, "Invalid ipv4 address: "+ip, http.StatusBadRequest)

			return
		default:
			h.sendLookupError(w, ip, err)

			return
		}
	}

	h.encodeJSON(w, response)
}
