package handlers

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse writes a JSON error body {"error": code, "message": message}.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	return WriteJSON(w, statusCode, map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes data as a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}
