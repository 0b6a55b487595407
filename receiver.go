package main

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ReceiverSSE streams room snapshots to a spectator over server-sent
// events. Spectators are read-only; they never hold a player slot.
type ReceiverSSE struct {
	w http.ResponseWriter
	f http.Flusher
}

func NewReceiverSSE(w http.ResponseWriter, f http.Flusher) *ReceiverSSE {
	return &ReceiverSSE{w, f}
}

func (r ReceiverSSE) SendByteSlice(msg []byte) {
	fmt.Fprintf(r.w, "data: %v\n\n", string(msg))
	r.f.Flush()
}

func (r ReceiverSSE) sendJSON(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	r.SendByteSlice(data)
}

func (r ReceiverSSE) SendRoomClosedMessage() {
	r.sendJSON(struct {
		Type string `json:"type"`
	}{Type: "close"})
}
