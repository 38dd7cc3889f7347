package ws

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/huddle-chat/huddle/backend/internal/config"
	chatservice "github.com/huddle-chat/huddle/backend/internal/service/chat"
)

// client pairs one websocket connection with its outbound queue. The read
// pump turns wire frames into coordinator events; the write pump drains the
// queue and keeps the connection alive with pings.
type client struct {
	id       string
	username string
	conn     *websocket.Conn
	coord    *chatservice.Coordinator
	cfg      config.ChatConfig

	send chan chatservice.Envelope
	done chan struct{}
}

func newClient(id, username string, conn *websocket.Conn, coord *chatservice.Coordinator, cfg config.ChatConfig) *client {
	return &client{
		id:       id,
		username: username,
		conn:     conn,
		coord:    coord,
		cfg:      cfg,
		send:     make(chan chatservice.Envelope, cfg.SendBuffer),
		done:     make(chan struct{}),
	}
}

// Send queues an envelope without blocking the coordinator. A full queue
// means the peer is too slow; the envelope is dropped and the connection's
// own teardown will follow if it is actually gone.
func (c *client) Send(env chatservice.Envelope) bool {
	select {
	case c.send <- env:
		return true
	default:
		return false
	}
}

// readPump consumes inbound frames until the connection dies, then tears
// the session down exactly once.
func (c *client) readPump() {
	defer func() {
		c.coord.Dispatch(chatservice.ClientClosed{ConnID: c.id})
		close(c.done)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
		return nil
	})

	for {
		var msg inbound
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[websocket] read error from %s: %v", c.username, err)
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
		c.handleInbound(msg)
	}
}

// handleInbound maps one wire request onto a coordinator event. Malformed
// payloads and unknown types are dropped without a reply.
func (c *client) handleInbound(msg inbound) {
	switch msg.Type {
	case typeGetRooms:
		c.coord.Dispatch(chatservice.GetRooms{ConnID: c.id})

	case typeCreateRoom:
		var payload createRoomPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			log.Printf("[websocket] invalid createRoom payload from %s: %v", c.username, err)
			return
		}
		c.coord.Dispatch(chatservice.CreateRoom{ConnID: c.id, Name: payload.Name})

	case typeJoinRoom:
		var payload joinRoomPayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			log.Printf("[websocket] invalid joinRoom payload from %s: %v", c.username, err)
			return
		}
		c.coord.Dispatch(chatservice.JoinRoom{ConnID: c.id, RoomID: payload.RoomID})

	case typeSendMessage:
		var payload sendMessagePayload
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			log.Printf("[websocket] invalid sendMessage payload from %s: %v", c.username, err)
			return
		}
		c.coord.Dispatch(chatservice.SendMessage{ConnID: c.id, RoomID: payload.RoomID, Text: payload.Text})

	default:
		log.Printf("[websocket] unsupported message type %q from %s", msg.Type, c.username)
	}
}

// writePump serializes all writes to the connection: queued envelopes,
// keepalive pings, and the final close frame.
func (c *client) writePump() {
	ticker := time.NewTicker(c.cfg.PingInterval())
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case env := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
