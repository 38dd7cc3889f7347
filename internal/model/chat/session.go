package chat

// Session records one live connection's claimed identity and current room.
// RoomID stays empty until the first join. A session belongs to at most one
// room at a time and exists only while its connection is open.
type Session struct {
	ConnID   string `json:"connId"`
	Username string `json:"username"`
	RoomID   string `json:"roomId"`
}

// OnlineUser is one presence entry broadcast to a room whenever its
// membership changes. Presence is keyed by connection, not by name, so the
// same username may appear more than once.
type OnlineUser struct {
	Username string `json:"username"`
	RoomID   string `json:"roomId"`
}
