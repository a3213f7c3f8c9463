package httpx

import (
	"encoding/json"
	"net/http"
)

// Message types carried in every response envelope.
const (
	TypeSuccess = "success"
	TypeWarning = "warning"
	TypeError   = "error"
)

// Message is the envelope every endpoint answers with. Payload-carrying
// responses embed it so the fields flatten into one object.
type Message struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes a bare {type, message} envelope.
func WriteMessage(w http.ResponseWriter, code int, typ, msg string) {
	WriteJSON(w, code, Message{Type: typ, Message: msg})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}
