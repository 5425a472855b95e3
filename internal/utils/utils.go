package utils

import (
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to write JSON", "error", err)
	}
}

// WriteError writes {"error": <status text>, "message": msg}.
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]any{
		"error":   http.StatusText(status),
		"message": msg,
	})
}

// WriteErrorMessage writes the bare {"error": msg} body used by the
// date-range endpoints.
func WriteErrorMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// WriteHTML writes a pre-rendered HTML document.
func WriteHTML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Error("failed to write HTML", "error", err)
	}
}
