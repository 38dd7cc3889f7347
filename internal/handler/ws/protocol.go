package ws

import "encoding/json"

// Client-to-server event types. Unknown types are logged and dropped.
const (
	typeGetRooms    = "getRooms"
	typeCreateRoom  = "createRoom"
	typeJoinRoom    = "joinRoom"
	typeSendMessage = "sendMessage"
)

// inbound is the envelope every client request arrives in.
type inbound struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

type createRoomPayload struct {
	Name string `json:"name"`
}

type joinRoomPayload struct {
	RoomID string `json:"roomId"`
}

type sendMessagePayload struct {
	Text   string `json:"text"`
	RoomID string `json:"roomId"`
}
