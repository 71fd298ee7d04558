package utils

import (
	"encoding/json"
	"net/http"
)

// WriteJSON writes v as the JSON response body with the given HTTP status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
