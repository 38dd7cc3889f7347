package chat

import (
	"sync"

	"github.com/google/uuid"

	"github.com/huddle-chat/huddle/backend/internal/model/chat"
)

const (
	// DefaultRoomName is the room every fresh process starts with.
	DefaultRoomName = "General"
	// SystemIdentity marks rooms created by the server rather than a user.
	SystemIdentity = "system"
)

// RoomRegistry owns the ordered set of rooms. Creation order is the
// canonical listing order, ids are unique, and rooms are never deleted.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms []chat.Room
	store *MessageStore
}

// NewRoomRegistry returns a registry seeded with the default room. The
// store reference lets room creation initialize an empty history in the
// same step.
func NewRoomRegistry(store *MessageStore) *RoomRegistry {
	r := &RoomRegistry{store: store}
	r.Create(DefaultRoomName, SystemIdentity)
	return r
}

// Create registers a new room under a fresh id and initializes its message
// history. It always succeeds: empty and duplicate names are permitted.
func (r *RoomRegistry) Create(name, createdBy string) chat.Room {
	room := chat.Room{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedBy: createdBy,
	}

	r.mu.Lock()
	r.rooms = append(r.rooms, room)
	r.mu.Unlock()

	r.store.Init(room.ID)
	return room
}

// List returns a snapshot of all rooms in creation order.
func (r *RoomRegistry) List() []chat.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]chat.Room(nil), r.rooms...)
}
