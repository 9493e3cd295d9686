package api

import (
	"encoding/json"
	"net/http"

	"github.com/oxtoacart/bpool"
)

var buffers = bpool.NewBufferPool(64)

// renderJSON encodes through a pooled buffer so an encoding failure never
// leaves a half-written 200 on the wire.
func renderJSON(w http.ResponseWriter, status int, v any) {
	buf := buffers.Get()
	defer buffers.Put(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func renderError(w http.ResponseWriter, status int, reason string) {
	renderJSON(w, status, map[string]any{"error": reason})
}

func renderRetryable(w http.ResponseWriter, reason string) {
	renderJSON(w, http.StatusServiceUnavailable, map[string]any{
		"error":     reason,
		"retryable": true,
	})
}
