package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

// Имена событий, уходящих клиентам.
const (
	EventNewMessage       = "new_message"
	EventScoreUpdated     = "score_updated"
	EventCreateComment    = "create_comment"
	EventUpdateComment    = "update_comment"
	EventDeleteComment    = "delete_comment"
	EventConnectionStatus = "connection_status"
	EventUserJoined       = "user_joined"
	EventPong             = "pong"
)

// Имена событий, приходящих от клиентов.
const (
	eventJoinChat = "join_chat"
	eventPing     = "ping"
)

// EventMessage - типизированное сообщение, доставляемое в комнату.
type EventMessage struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

// Hub держит членство в комнатах в памяти процесса. ID комнаты - это
// ID матча в текстовом виде. Доставка best-effort: медленный клиент
// пропускает сообщение, но не блокирует остальных.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	rooms map[string]map[*Client]bool
	mu    sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			// Комнату клиент выбирает позже, событием join_chat.
			h.Echo(client, EventConnectionStatus, map[string]string{
				"session_id": client.SessionID,
				"status":     "connected",
			})
			log.Printf("Client %s connected", client.SessionID)

		case client := <-h.Unregister:
			h.removeClient(client)
		}
	}
}

// JoinRoom добавляет клиента в комнату и уведомляет остальных её
// участников событием user_joined. Отправителю уведомление не идёт.
func (h *Hub) JoinRoom(client *Client, roomID, userID string) {
	h.mu.Lock()
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
	log.Printf("Client %s joined room %s. Total clients in room: %d", client.SessionID, roomID, len(h.rooms[roomID]))
	h.mu.Unlock()

	h.broadcastToRoomExcept(roomID, client, EventMessage{
		Event:  EventUserJoined,
		RoomID: roomID,
		Payload: map[string]string{
			"user_id": userID,
			"message": "user joined the chat",
		},
	})
}

// BroadcastToRoom отправляет событие всем клиентам комнаты.
// Пустая комната - не ошибка, просто некому доставлять.
func (h *Hub) BroadcastToRoom(roomID string, event string, payload interface{}) {
	h.broadcastToRoomExcept(roomID, nil, EventMessage{
		Event:   event,
		RoomID:  roomID,
		Payload: payload,
	})
}

// Echo отправляет событие только одному клиенту (ответ на ping и т.п.).
func (h *Hub) Echo(client *Client, event string, payload interface{}) {
	messageBytes, err := json.Marshal(EventMessage{Event: event, Payload: payload})
	if err != nil {
		log.Printf("Error marshalling echo message for client %s: %v", client.SessionID, err)
		return
	}
	client.trySend(messageBytes)
}

// RoomSize возвращает число подключений в комнате.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) broadcastToRoomExcept(roomID string, skip *Client, message EventMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	roomClients, ok := h.rooms[roomID]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshalling message for room %s: %v", roomID, err)
		return
	}

	for client := range roomClients {
		if client == skip {
			continue
		}
		client.trySend(messageBytes)
	}
}

// removeClient убирает клиента из всех его комнат. Уведомлений при
// отключении не рассылаем.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for roomID := range client.rooms {
		if roomClients, ok := h.rooms[roomID]; ok {
			delete(roomClients, client)
			if len(roomClients) == 0 {
				delete(h.rooms, roomID)
				log.Printf("Room %s closed as it's empty.", roomID)
			}
		}
	}
	client.rooms = make(map[string]bool)

	client.Mu.Lock()
	if !client.IsClosed {
		close(client.Send)
		client.IsClosed = true
	}
	client.Mu.Unlock()
	log.Printf("Client %s disconnected", client.SessionID)
}
