package chat

// Room is a named channel grouping connected sessions and an append-only
// message history. Rooms are immutable after creation and never destroyed.
type Room struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedBy string `json:"createdBy"`
}
