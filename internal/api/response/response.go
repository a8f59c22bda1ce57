package response

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, v)
}

// OK writes v with status 200.
func OK(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, v)
}

// Error writes the { "error": message } body every failure uses.
func Error(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
