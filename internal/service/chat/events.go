package chat

import (
	"time"

	"github.com/huddle-chat/huddle/backend/internal/model/chat"
)

// Server-to-client event types carried in an Envelope.
const (
	EventRoomList    = "roomList"
	EventRoomHistory = "roomHistory"
	EventMessage     = "message"
	EventOnlineUsers = "onlineUsers"
)

// Envelope is one server-to-client event as it goes on the wire.
type Envelope struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func newEnvelope(eventType string, data any) Envelope {
	return Envelope{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
}

// RoomHistory is the payload of a roomHistory envelope.
type RoomHistory struct {
	RoomID  string         `json:"roomId"`
	History []chat.Message `json:"history"`
}

// Sink delivers envelopes to a single connection. Send must not block; it
// reports false when the peer can no longer accept writes, which is never
// an error for the sender.
type Sink interface {
	Send(env Envelope) bool
}

// Event is one unit of work against the shared chat state. Events form a
// closed set so the coordinator's dispatch switch is exhaustive.
type Event interface {
	isEvent()
}

// ClientConnected announces an admitted connection and its outbound sink.
type ClientConnected struct {
	ConnID   string
	Username string
	Sink     Sink
}

// GetRooms asks for the room list to be resent to the caller.
type GetRooms struct {
	ConnID string
}

// CreateRoom registers a new room on behalf of the caller.
type CreateRoom struct {
	ConnID string
	Name   string
}

// JoinRoom switches the caller into a room.
type JoinRoom struct {
	ConnID string
	RoomID string
}

// SendMessage appends a message to a room and fans it out to its members.
type SendMessage struct {
	ConnID string
	RoomID string
	Text   string
}

// ClientClosed tears down a connection's session. The transport emits it
// exactly once per connection, whether the close was voluntary or not.
type ClientClosed struct {
	ConnID string
}

func (ClientConnected) isEvent() {}
func (GetRooms) isEvent()        {}
func (CreateRoom) isEvent()      {}
func (JoinRoom) isEvent()        {}
func (SendMessage) isEvent()     {}
func (ClientClosed) isEvent()    {}
