package room

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	chatservice "github.com/huddle-chat/huddle/backend/internal/service/chat"
	"github.com/huddle-chat/huddle/backend/pkg/utils"
)

// Handler exposes read-only snapshots of the chat state over HTTP. It never
// mutates; all writes go through the coordinator's event loop.
type Handler struct {
	rooms    *chatservice.RoomRegistry
	store    *chatservice.MessageStore
	sessions *chatservice.SessionTable
}

// New creates the room read handler.
func New(rooms *chatservice.RoomRegistry, store *chatservice.MessageStore, sessions *chatservice.SessionTable) *Handler {
	return &Handler{
		rooms:    rooms,
		store:    store,
		sessions: sessions,
	}
}

// RegisterRoutes mounts the room endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/rooms", h.handleListRooms)
	r.Get("/rooms/{roomID}/messages", h.handleRoomHistory)
	r.Get("/rooms/{roomID}/users", h.handleRoomUsers)
}

func (h *Handler) handleListRooms(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.rooms.List())
}

// handleRoomHistory mirrors the roomHistory websocket event: an unknown
// room id yields an empty history, not an error.
func (h *Handler) handleRoomHistory(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	utils.RespondJSON(w, http.StatusOK, chatservice.RoomHistory{
		RoomID:  roomID,
		History: h.store.History(roomID),
	})
}

func (h *Handler) handleRoomUsers(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	utils.RespondJSON(w, http.StatusOK, h.sessions.OnlineIn(roomID))
}
