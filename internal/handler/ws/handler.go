package ws

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/huddle-chat/huddle/backend/internal/config"
	chatservice "github.com/huddle-chat/huddle/backend/internal/service/chat"
	"github.com/huddle-chat/huddle/backend/pkg/utils"
)

// Handler upgrades admitted connections and hands them to the coordinator.
type Handler struct {
	coord    *chatservice.Coordinator
	cfg      config.ChatConfig
	upgrader websocket.Upgrader
}

// New creates the websocket handler.
func New(coord *chatservice.Coordinator, cfg config.ChatConfig) *Handler {
	return &Handler{
		coord: coord,
		cfg:   cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return cfg.OriginAllowed(r.Header.Get("Origin"))
			},
		},
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleConnect)
}

// handleConnect gates the claimed identity before the upgrade. The username
// travels in the query string, the handshake-time identity claim; a
// connection without one is refused and never reaches the coordinator.
func (h *Handler) handleConnect(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if err := chatservice.Admit(username); err != nil {
		if errors.Is(err, chatservice.ErrMissingIdentity) {
			utils.RespondError(w, http.StatusBadRequest, "username is required")
			return
		}
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[websocket] upgrade failed: %v", err)
		return
	}

	client := newClient(uuid.NewString(), username, conn, h.coord, h.cfg)
	h.coord.Dispatch(chatservice.ClientConnected{
		ConnID:   client.id,
		Username: username,
		Sink:     client,
	})

	go client.writePump()
	go client.readPump()
}
