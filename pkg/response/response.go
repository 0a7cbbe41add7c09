// Package response writes the HTTP JSON envelope. It mirrors the ack
// shape the websocket side uses: a success flag, then either a payload
// or a machine-readable code plus a human message.
package response

import (
	"encoding/json"
	"net/http"
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Code    string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

func Error(w http.ResponseWriter, status int, code string, message string) {
	JSON(w, status, envelope{Code: code, Message: message})
}
