package chat

import (
	"sync"

	"github.com/huddle-chat/huddle/backend/internal/model/chat"
)

// SessionTable maps each live connection to its claimed identity and
// current room. Entries exist only while the connection is open; iteration
// order is insertion order of the table.
type SessionTable struct {
	mu       sync.RWMutex
	order    []string
	sessions map[string]chat.Session
}

// NewSessionTable bootstraps an empty table.
func NewSessionTable() *SessionTable {
	return &SessionTable{
		sessions: make(map[string]chat.Session),
	}
}

// Register creates a session with no current room.
func (t *SessionTable) Register(connID, username string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.sessions[connID]; !ok {
		t.order = append(t.order, connID)
	}
	t.sessions[connID] = chat.Session{ConnID: connID, Username: username}
}

// Get looks up a session by connection id.
func (t *SessionTable) Get(connID string) (chat.Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	session, ok := t.sessions[connID]
	return session, ok
}

// SetRoom overwrites the session's current room. Unknown connection ids are
// ignored: the join raced with a disconnection and the session is gone.
func (t *SessionTable) SetRoom(connID, roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	session, ok := t.sessions[connID]
	if !ok {
		return
	}
	session.RoomID = roomID
	t.sessions[connID] = session
}

// Unregister removes the session and reports the room it last occupied, so
// the caller can refresh presence for the room the user just left. The
// second return is false when the connection id was not registered.
func (t *SessionTable) Unregister(connID string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	session, ok := t.sessions[connID]
	if !ok {
		return "", false
	}
	delete(t.sessions, connID)
	for i, id := range t.order {
		if id == connID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return session.RoomID, true
}

// MembersOf returns every session currently in the given room, in table
// insertion order.
func (t *SessionTable) MembersOf(roomID string) []chat.Session {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var members []chat.Session
	for _, id := range t.order {
		if session := t.sessions[id]; session.RoomID == roomID {
			members = append(members, session)
		}
	}
	return members
}

// OnlineIn derives the presence list for a room from the current table
// state. It is a pure read; the broadcast itself belongs to the
// coordinator.
func (t *SessionTable) OnlineIn(roomID string) []chat.OnlineUser {
	members := t.MembersOf(roomID)
	online := make([]chat.OnlineUser, 0, len(members))
	for _, member := range members {
		online = append(online, chat.OnlineUser{Username: member.Username, RoomID: member.RoomID})
	}
	return online
}
