package chat

import (
	"sync"

	"github.com/huddle-chat/huddle/backend/internal/model/chat"
)

// MessageStore holds the per-room message history in memory. Sequences are
// append-only and insertion order is chronological order. Nothing is ever
// evicted, so history grows for the lifetime of the process.
type MessageStore struct {
	mu       sync.RWMutex
	messages map[string][]chat.Message
}

// NewMessageStore bootstraps an empty in-memory store.
func NewMessageStore() *MessageStore {
	return &MessageStore{
		messages: make(map[string][]chat.Message),
	}
}

// Init ensures an empty sequence exists for the given room. Called by the
// registry when a room is created so that History never has to distinguish
// "new room" from "unknown room".
func (s *MessageStore) Init(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.messages[roomID]; !ok {
		s.messages[roomID] = make([]chat.Message, 0, 16)
	}
}

// Append adds a message to the end of its room's sequence, creating the
// sequence if the registry never initialized it.
func (s *MessageStore) Append(roomID string, message chat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.messages[roomID] = append(s.messages[roomID], message)
}

// History returns a copy of the full sequence for a room, in append order.
// An unknown room id yields an empty slice, never an error.
func (s *MessageStore) History(roomID string) []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := s.messages[roomID]
	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied
}
