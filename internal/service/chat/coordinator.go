package chat

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/huddle-chat/huddle/backend/internal/model/chat"
)

// Coordinator wires connection lifecycle events to the registry, store, and
// session table, and performs all broadcasts. Every event funnels through a
// single dispatch goroutine, so two events touching the same room never
// interleave their read-modify-write steps.
type Coordinator struct {
	rooms    *RoomRegistry
	store    *MessageStore
	sessions *SessionTable

	events chan Event
	done   chan struct{}

	// sinks is touched only by the dispatch goroutine.
	sinks map[string]Sink
}

// NewCoordinator assembles the dispatcher over the shared chat state.
func NewCoordinator(rooms *RoomRegistry, store *MessageStore, sessions *SessionTable) *Coordinator {
	return &Coordinator{
		rooms:    rooms,
		store:    store,
		sessions: sessions,
		events:   make(chan Event, 256),
		done:     make(chan struct{}),
		sinks:    make(map[string]Sink),
	}
}

// Dispatch queues an event for the dispatch goroutine. After Run returns,
// events are discarded so transport goroutines draining a dying server do
// not block.
func (c *Coordinator) Dispatch(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// Run consumes events until the context is cancelled. It should be started
// in its own goroutine before the transport accepts connections.
func (c *Coordinator) Run(ctx context.Context) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.events:
			c.handle(ev)
		}
	}
}

func (c *Coordinator) handle(ev Event) {
	switch ev := ev.(type) {
	case ClientConnected:
		c.handleConnected(ev)
	case GetRooms:
		c.sendTo(ev.ConnID, newEnvelope(EventRoomList, c.rooms.List()))
	case CreateRoom:
		c.handleCreateRoom(ev)
	case JoinRoom:
		c.handleJoinRoom(ev)
	case SendMessage:
		c.handleSendMessage(ev)
	case ClientClosed:
		c.handleClosed(ev)
	}
}

func (c *Coordinator) handleConnected(ev ClientConnected) {
	c.sessions.Register(ev.ConnID, ev.Username)
	c.sinks[ev.ConnID] = ev.Sink
	c.sendTo(ev.ConnID, newEnvelope(EventRoomList, c.rooms.List()))
	log.Printf("[coordinator] %s connected (%d sessions)", ev.Username, len(c.sinks))
}

// handleCreateRoom registers the room and pushes the updated list to every
// connected session. This is the one operation whose effect is visible
// server-wide rather than room-scoped.
func (c *Coordinator) handleCreateRoom(ev CreateRoom) {
	session, ok := c.sessions.Get(ev.ConnID)
	if !ok {
		return
	}
	c.rooms.Create(ev.Name, session.Username)
	c.broadcastAll(newEnvelope(EventRoomList, c.rooms.List()))
}

// handleJoinRoom moves the caller into the room, replays the room's history
// to the caller only, and refreshes presence for the joined room and, when
// switching directly, for the room just vacated.
func (c *Coordinator) handleJoinRoom(ev JoinRoom) {
	if ev.RoomID == "" {
		return
	}
	session, ok := c.sessions.Get(ev.ConnID)
	if !ok {
		return
	}

	previous := session.RoomID
	c.sessions.SetRoom(ev.ConnID, ev.RoomID)

	c.sendTo(ev.ConnID, newEnvelope(EventRoomHistory, RoomHistory{
		RoomID:  ev.RoomID,
		History: c.store.History(ev.RoomID),
	}))

	c.broadcastPresence(ev.RoomID)
	if previous != "" && previous != ev.RoomID {
		c.broadcastPresence(previous)
	}
}

// handleSendMessage drops invalid requests silently; an empty text or room
// id surfaces no error to the sender.
func (c *Coordinator) handleSendMessage(ev SendMessage) {
	if ev.Text == "" || ev.RoomID == "" {
		return
	}
	session, ok := c.sessions.Get(ev.ConnID)
	if !ok {
		return
	}

	message := chat.Message{
		ID:        uuid.NewString(),
		RoomID:    ev.RoomID,
		Username:  session.Username,
		Text:      ev.Text,
		Timestamp: time.Now().UTC(),
	}
	c.store.Append(ev.RoomID, message)
	c.broadcastRoom(ev.RoomID, newEnvelope(EventMessage, message))
}

func (c *Coordinator) handleClosed(ev ClientClosed) {
	delete(c.sinks, ev.ConnID)
	roomID, ok := c.sessions.Unregister(ev.ConnID)
	if !ok {
		return
	}
	if roomID != "" {
		c.broadcastPresence(roomID)
	}
}

func (c *Coordinator) sendTo(connID string, env Envelope) {
	if sink, ok := c.sinks[connID]; ok {
		sink.Send(env)
	}
}

// broadcastRoom fans an envelope out to the sessions in the room at the
// instant of the triggering event. A peer that can no longer accept writes
// is skipped; its own teardown will follow as a ClientClosed event.
func (c *Coordinator) broadcastRoom(roomID string, env Envelope) {
	for _, member := range c.sessions.MembersOf(roomID) {
		c.sendTo(member.ConnID, env)
	}
}

func (c *Coordinator) broadcastAll(env Envelope) {
	for _, sink := range c.sinks {
		sink.Send(env)
	}
}

func (c *Coordinator) broadcastPresence(roomID string) {
	c.broadcastRoom(roomID, newEnvelope(EventOnlineUsers, c.sessions.OnlineIn(roomID)))
}
