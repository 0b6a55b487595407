// Package wire holds the JSON message plumbing shared by the connection
// frontend and the game simulations.
package wire

import (
	"encoding/json"
	"fmt"
)

// Envelope is the common header every inbound message carries.
type Envelope struct {
	Type string `json:"type"`
}

func Decode[T any](data []byte) T {
	var parsed T
	json.Unmarshal(data, &parsed)
	return parsed
}

// Error is the typed error reply. The connection stays open after a
// validation error; protocol errors close it (the caller decides).
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func Errorf(format string, args ...any) Error {
	return Error{Type: "error", Message: fmt.Sprintf(format, args...)}
}
