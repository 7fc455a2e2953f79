package census

import (
	"net/http"
)

func (h httpHandler) handleGetLookup(w http.ResponseWriter, req *http.Request) {
	query := req.URL.Query()

	ip := query.Get("ipv4")
	if ip == "" {
		h.sendError(w, nil, "Invalid or missing ipv4 parameter", http.StatusBadRequest)

		return
	}

	includeStopped := parseBoolToken(query.Get("includeStopped"))
	includeBlocked := parseBoolToken(query.Get("includeBlocked"))

	record, err := h.engine.Lookup(ip, includeStopped, includeBlocked)
	if err != nil {
		h.sendLookupError(w, ip, err)

		return
	}

	h.encodeJSON(w, record)
}

func (h httpHandler) handleGetStats(w http.ResponseWriter, req *http.Request) {
	response := struct {
		Lookups  *UsageStats `json:"lookups"`
		Snapshot struct {
			Ready   bool `json:"ready"`
			Records int  `json:"records"`
		} `json:"snapshot"`
	}{
		Lookups: h.engine.Stats(),
	}

	if snapshot, err := h.store.Current(); err == nil {
		response.Snapshot.Ready = true
		response.Snapshot.Records = len(snapshot)
	}

	h.encodeJSON(w, response)
}
