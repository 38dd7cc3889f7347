package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/huddle-chat/huddle/backend/internal/config"
	"github.com/huddle-chat/huddle/backend/internal/handler/room"
	"github.com/huddle-chat/huddle/backend/internal/handler/ws"
	middlewarePkg "github.com/huddle-chat/huddle/backend/internal/middleware"
	chatservice "github.com/huddle-chat/huddle/backend/internal/service/chat"
)

// NewRouter wires HTTP routes to the chat core: the websocket endpoint for
// the realtime surface and a read-only REST surface for snapshots.
func NewRouter(coord *chatservice.Coordinator, rooms *chatservice.RoomRegistry, store *chatservice.MessageStore, sessions *chatservice.SessionTable, chatCfg config.ChatConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	wsHandler := ws.New(coord, chatCfg)
	wsHandler.RegisterRoutes(r)

	roomHandler := room.New(rooms, store, sessions)
	r.Route("/api", func(api chi.Router) {
		roomHandler.RegisterRoutes(api)
	})

	return r
}
