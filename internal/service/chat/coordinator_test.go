package chat

import (
	"context"
	"testing"
	"time"

	model "github.com/huddle-chat/huddle/backend/internal/model/chat"
)

// captureSink records every envelope delivered to one fake connection.
type captureSink struct {
	envs []Envelope
}

func (s *captureSink) Send(env Envelope) bool {
	s.envs = append(s.envs, env)
	return true
}

func (s *captureSink) byType(eventType string) []Envelope {
	var out []Envelope
	for _, env := range s.envs {
		if env.Type == eventType {
			out = append(out, env)
		}
	}
	return out
}

func (s *captureSink) reset() { s.envs = nil }

func newTestCoordinator() *Coordinator {
	store := NewMessageStore()
	rooms := NewRoomRegistry(store)
	sessions := NewSessionTable()
	return NewCoordinator(rooms, store, sessions)
}

func connect(c *Coordinator, connID, username string) *captureSink {
	sink := &captureSink{}
	c.handle(ClientConnected{ConnID: connID, Username: username, Sink: sink})
	return sink
}

func TestConnectSendsRoomListToCallerOnly(t *testing.T) {
	c := newTestCoordinator()
	alice := connect(c, "conn-a", "alice")

	if len(alice.envs) != 1 || alice.envs[0].Type != EventRoomList {
		t.Fatalf("expected a single roomList envelope, got %+v", alice.envs)
	}
	rooms := alice.envs[0].Data.([]model.Room)
	if len(rooms) != 1 || rooms[0].Name != DefaultRoomName {
		t.Fatalf("unexpected initial room list: %+v", rooms)
	}

	bob := connect(c, "conn-b", "bob")
	if len(alice.envs) != 1 {
		t.Fatalf("alice received extra envelopes on bob's connect: %+v", alice.envs)
	}
	if len(bob.envs) != 1 {
		t.Fatalf("expected a single roomList for bob, got %+v", bob.envs)
	}
}

func TestGetRoomsIsIdempotent(t *testing.T) {
	c := newTestCoordinator()
	alice := connect(c, "conn-a", "alice")
	alice.reset()

	c.handle(GetRooms{ConnID: "conn-a"})
	c.handle(GetRooms{ConnID: "conn-a"})

	lists := alice.byType(EventRoomList)
	if len(lists) != 2 {
		t.Fatalf("expected 2 roomList envelopes, got %d", len(lists))
	}
	first := lists[0].Data.([]model.Room)
	second := lists[1].Data.([]model.Room)
	if len(first) != len(second) {
		t.Fatalf("room list changed between calls: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("room %d differs between calls: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestCreateRoomBroadcastsListToEveryone(t *testing.T) {
	c := newTestCoordinator()
	alice := connect(c, "conn-a", "alice")
	bob := connect(c, "conn-b", "bob")
	alice.reset()
	bob.reset()

	c.handle(CreateRoom{ConnID: "conn-a", Name: "Sports"})

	for name, sink := range map[string]*captureSink{"alice": alice, "bob": bob} {
		lists := sink.byType(EventRoomList)
		if len(lists) != 1 {
			t.Fatalf("%s: expected 1 roomList, got %d", name, len(lists))
		}
		rooms := lists[0].Data.([]model.Room)
		if len(rooms) != 2 || rooms[0].Name != DefaultRoomName || rooms[1].Name != "Sports" {
			t.Fatalf("%s: unexpected room list: %+v", name, rooms)
		}
		if rooms[1].CreatedBy != "alice" {
			t.Fatalf("%s: room creator should be alice, got %s", name, rooms[1].CreatedBy)
		}
	}
}

func TestJoinRoomSendsHistoryAndPresence(t *testing.T) {
	c := newTestCoordinator()
	roomID := c.rooms.List()[0].ID
	c.store.Append(roomID, model.Message{ID: "msg-1", RoomID: roomID, Username: "earlier", Text: "old news"})

	alice := connect(c, "conn-a", "alice")
	alice.reset()

	c.handle(JoinRoom{ConnID: "conn-a", RoomID: roomID})

	histories := alice.byType(EventRoomHistory)
	if len(histories) != 1 {
		t.Fatalf("expected 1 roomHistory, got %d", len(histories))
	}
	payload := histories[0].Data.(RoomHistory)
	if payload.RoomID != roomID {
		t.Fatalf("history for wrong room: %s", payload.RoomID)
	}
	if len(payload.History) != 1 || payload.History[0].Text != "old news" {
		t.Fatalf("unexpected history: %+v", payload.History)
	}

	presence := alice.byType(EventOnlineUsers)
	if len(presence) != 1 {
		t.Fatalf("expected 1 onlineUsers broadcast, got %d", len(presence))
	}
	online := presence[0].Data.([]model.OnlineUser)
	if len(online) != 1 || online[0].Username != "alice" {
		t.Fatalf("unexpected presence: %+v", online)
	}
}

func TestJoinUnknownRoomYieldsEmptyHistory(t *testing.T) {
	c := newTestCoordinator()
	alice := connect(c, "conn-a", "alice")
	alice.reset()

	c.handle(JoinRoom{ConnID: "conn-a", RoomID: "nonexistent-id"})

	histories := alice.byType(EventRoomHistory)
	if len(histories) != 1 {
		t.Fatalf("expected 1 roomHistory, got %d", len(histories))
	}
	payload := histories[0].Data.(RoomHistory)
	if payload.RoomID != "nonexistent-id" || len(payload.History) != 0 {
		t.Fatalf("unexpected history payload: %+v", payload)
	}
}

func TestMessageDeliveredExactlyOnceToRoomMembers(t *testing.T) {
	c := newTestCoordinator()
	roomID := c.rooms.List()[0].ID

	alice := connect(c, "conn-a", "alice")
	bob := connect(c, "conn-b", "bob")
	carol := connect(c, "conn-c", "carol")
	c.handle(JoinRoom{ConnID: "conn-a", RoomID: roomID})
	c.handle(JoinRoom{ConnID: "conn-b", RoomID: roomID})
	alice.reset()
	bob.reset()
	carol.reset()

	c.handle(SendMessage{ConnID: "conn-a", RoomID: roomID, Text: "hi"})

	for name, sink := range map[string]*captureSink{"alice": alice, "bob": bob} {
		messages := sink.byType(EventMessage)
		if len(messages) != 1 {
			t.Fatalf("%s: expected exactly 1 message, got %d", name, len(messages))
		}
		msg := messages[0].Data.(model.Message)
		if msg.Text != "hi" || msg.Username != "alice" {
			t.Fatalf("%s: unexpected message: %+v", name, msg)
		}
		if msg.ID == "" {
			t.Fatalf("%s: message has no id", name)
		}
	}
	if len(carol.envs) != 0 {
		t.Fatalf("carol is not in the room but received: %+v", carol.envs)
	}

	history := c.store.History(roomID)
	if len(history) == 0 || history[len(history)-1].Text != "hi" {
		t.Fatalf("history does not end with the sent message: %+v", history)
	}
}

func TestInvalidSendIsSilentlyDropped(t *testing.T) {
	c := newTestCoordinator()
	roomID := c.rooms.List()[0].ID
	alice := connect(c, "conn-a", "alice")
	c.handle(JoinRoom{ConnID: "conn-a", RoomID: roomID})
	alice.reset()

	c.handle(SendMessage{ConnID: "conn-a", RoomID: roomID, Text: ""})
	c.handle(SendMessage{ConnID: "conn-a", RoomID: "", Text: "hi"})

	if len(alice.envs) != 0 {
		t.Fatalf("invalid sends produced envelopes: %+v", alice.envs)
	}
	if history := c.store.History(roomID); len(history) != 0 {
		t.Fatalf("invalid sends were stored: %+v", history)
	}
}

func TestRoomSwitchRefreshesBothRooms(t *testing.T) {
	c := newTestCoordinator()
	roomA := c.rooms.List()[0].ID
	roomB := c.rooms.Create("Side", "system").ID

	alice := connect(c, "conn-a", "alice")
	bob := connect(c, "conn-b", "bob")
	c.handle(JoinRoom{ConnID: "conn-a", RoomID: roomA})
	c.handle(JoinRoom{ConnID: "conn-b", RoomID: roomA})
	alice.reset()
	bob.reset()

	c.handle(JoinRoom{ConnID: "conn-a", RoomID: roomB})

	// The vacated room hears that alice left.
	bobPresence := bob.byType(EventOnlineUsers)
	if len(bobPresence) != 1 {
		t.Fatalf("expected 1 presence refresh for the vacated room, got %d", len(bobPresence))
	}
	remaining := bobPresence[0].Data.([]model.OnlineUser)
	if len(remaining) != 1 || remaining[0].Username != "bob" {
		t.Fatalf("vacated room presence should be just bob: %+v", remaining)
	}

	// The joined room hears that alice arrived.
	alicePresence := alice.byType(EventOnlineUsers)
	if len(alicePresence) != 1 {
		t.Fatalf("expected 1 presence refresh for the joined room, got %d", len(alicePresence))
	}
	arrived := alicePresence[0].Data.([]model.OnlineUser)
	if len(arrived) != 1 || arrived[0].Username != "alice" || arrived[0].RoomID != roomB {
		t.Fatalf("joined room presence should be just alice: %+v", arrived)
	}
}

func TestDisconnectRefreshesPresenceForItsRoom(t *testing.T) {
	c := newTestCoordinator()
	roomID := c.rooms.List()[0].ID

	connect(c, "conn-a", "alice")
	bob := connect(c, "conn-b", "bob")
	c.handle(JoinRoom{ConnID: "conn-a", RoomID: roomID})
	c.handle(JoinRoom{ConnID: "conn-b", RoomID: roomID})
	bob.reset()

	c.handle(ClientClosed{ConnID: "conn-a"})

	presence := bob.byType(EventOnlineUsers)
	if len(presence) != 1 {
		t.Fatalf("expected 1 presence refresh, got %d", len(presence))
	}
	online := presence[0].Data.([]model.OnlineUser)
	if len(online) != 1 || online[0].Username != "bob" {
		t.Fatalf("presence should exclude the disconnected user: %+v", online)
	}
}

func TestRoomlessDisconnectBroadcastsNothing(t *testing.T) {
	c := newTestCoordinator()
	roomID := c.rooms.List()[0].ID

	connect(c, "conn-a", "alice")
	bob := connect(c, "conn-b", "bob")
	c.handle(JoinRoom{ConnID: "conn-b", RoomID: roomID})
	bob.reset()

	c.handle(ClientClosed{ConnID: "conn-a"})

	if len(bob.envs) != 0 {
		t.Fatalf("roomless disconnect should broadcast nothing, got %+v", bob.envs)
	}
}

func TestEventsForUnknownConnAreIgnored(t *testing.T) {
	c := newTestCoordinator()
	roomID := c.rooms.List()[0].ID

	c.handle(CreateRoom{ConnID: "ghost", Name: "Sports"})
	c.handle(JoinRoom{ConnID: "ghost", RoomID: roomID})
	c.handle(SendMessage{ConnID: "ghost", RoomID: roomID, Text: "hi"})
	c.handle(ClientClosed{ConnID: "ghost"})

	if rooms := c.rooms.List(); len(rooms) != 1 {
		t.Fatalf("ghost connection created a room: %+v", rooms)
	}
	if history := c.store.History(roomID); len(history) != 0 {
		t.Fatalf("ghost connection stored a message: %+v", history)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	c := newTestCoordinator()
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(stopped)
	}()

	c.Dispatch(GetRooms{ConnID: "nobody"})
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	// After shutdown, Dispatch must not block callers.
	done := make(chan struct{})
	go func() {
		c.Dispatch(GetRooms{ConnID: "nobody"})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Dispatch blocked after shutdown")
	}
}
