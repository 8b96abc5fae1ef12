package websocket

import (
	"encoding/json"
	"fmt"
)

// Client -> server actions. Acks are sent back under the same action;
// roomUpdate and opponentLeft are server-initiated broadcasts.
const (
	ActionCreateRoom = "createRoom"
	ActionJoinRoom   = "joinRoom"
	ActionMakeMove   = "makeMove"
	ActionResetRoom  = "resetRoom"
	ActionLeaveRoom  = "leaveRoom"

	ActionRoomUpdate   = "roomUpdate"
	ActionOpponentLeft = "opponentLeft"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type roomRequest struct {
	RoomID string `json:"roomId"`
}

type moveRequest struct {
	RoomID string `json:"roomId"`
	Index  *int   `json:"index"`
}

type createRoomAck struct {
	RoomID string `json:"roomId"`
	Side   string `json:"side"`
}

type joinRoomAck struct {
	Side         string `json:"side"`
	PlayersReady bool   `json:"playersReady"`
}

type okAck struct {
	OK bool `json:"ok"`
}

type errorAck struct {
	Error string `json:"error"`
}

func encodeMessage(action string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	data, err := json.Marshal(Message{Action: action, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}
