package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan []byte
	SessionID string
	IsClosed  bool
	Mu        sync.Mutex

	// Комнаты, в которых состоит клиент. Защищается мьютексом хаба.
	rooms map[string]bool
}

func NewClient(hub *Hub, conn *websocket.Conn, sessionID string) *Client {
	return &Client{
		Hub:       hub,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		SessionID: sessionID,
		rooms:     make(map[string]bool),
	}
}

// inboundEvent - конверт событий клиент → сервер.
type inboundEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinChatPayload struct {
	MatchID string `json:"match_id"`
	UserID  string `json:"user_id"`
}

type pingPayload struct {
	Timestamp int64 `json:"timestamp"`
}

// trySend кладёт сообщение в канал клиента, не блокируясь: если канал
// полон или закрыт, сообщение пропускается. Клиент восстановит
// состояние повторным запросом к API.
func (c *Client) trySend(message []byte) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	if c.IsClosed {
		return
	}
	select {
	case c.Send <- message:
	default:
		log.Printf("Client %s send channel full. Dropping message.", c.SessionID)
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Client %s read error: %v", c.SessionID, err)
			}
			break
		}
		c.handleInbound(message)
	}
}

func (c *Client) handleInbound(message []byte) {
	var event inboundEvent
	if err := json.Unmarshal(message, &event); err != nil {
		log.Printf("Client %s sent malformed event: %v", c.SessionID, err)
		return
	}

	switch event.Event {
	case eventJoinChat:
		var payload joinChatPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil || payload.MatchID == "" {
			log.Printf("Client %s sent invalid join_chat payload", c.SessionID)
			return
		}
		c.Hub.JoinRoom(c, payload.MatchID, payload.UserID)

	case eventPing:
		var payload pingPayload
		if err := json.Unmarshal(event.Data, &payload); err != nil {
			log.Printf("Client %s sent invalid ping payload", c.SessionID)
			return
		}
		c.Hub.Echo(c, EventPong, pingPayload{Timestamp: payload.Timestamp})

	default:
		log.Printf("Client %s sent unknown event %q (ignored)", c.SessionID, event.Event)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				log.Printf("Error getting next writer for client %s: %v", c.SessionID, err)
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				log.Printf("Error closing writer for client %s: %v", c.SessionID, err)
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
