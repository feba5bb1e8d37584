// Package response holds the JSON response helpers shared by all handlers.
// 4xx errors carry a {"message": ...} body; 5xx responses are a generic
// plain-text "Server error" so internals never leak.
package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes v as a JSON body with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Message writes a {"message": msg} body with the given status code.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// ServerError writes the generic 500 response.
func ServerError(w http.ResponseWriter) {
	http.Error(w, "Server error", http.StatusInternalServerError)
}
