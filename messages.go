package main

// Inbound messages handled by the connection frontend and the hosts.
// Game-specific payloads are decoded inside each simulation's Handle.

type helloMessage struct {
	GameID string `json:"gameId"`
}

type joinRoomMessage struct {
	RoomID      string `json:"roomId"`
	ResumeToken string `json:"resumeToken"`
}

// Outbound replies.

type helloAckMessage struct {
	Type   string `json:"type"`
	GameID string `json:"gameId"`
}

type roomJoinedMessage struct {
	Type        string `json:"type"`
	RoomID      string `json:"roomId"`
	PlayerID    int    `json:"playerId"`
	ResumeToken string `json:"resumeToken,omitempty"`
	State       any    `json:"state"`
}

type stateMessage struct {
	Type  string `json:"type"`
	State any    `json:"state"`
}

type roomSummary struct {
	ID      string `json:"id"`
	Players int    `json:"players"`
}

type roomListMessage struct {
	Type  string        `json:"type"`
	Rooms []roomSummary `json:"rooms"`
}
