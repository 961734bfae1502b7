package realtime

import (
	"encoding/json"
	"testing"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return NewClient(hub, nil, sessionID)
}

func receiveEvent(t *testing.T, client *Client) EventMessage {
	t.Helper()
	select {
	case raw := <-client.Send:
		var msg EventMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("client %s received invalid JSON: %v", client.SessionID, err)
		}
		return msg
	default:
		t.Fatalf("client %s received nothing", client.SessionID)
		return EventMessage{}
	}
}

func assertNoEvent(t *testing.T, client *Client) {
	t.Helper()
	select {
	case raw := <-client.Send:
		t.Fatalf("client %s unexpectedly received: %s", client.SessionID, raw)
	default:
	}
}

func TestHub_BroadcastToRoom(t *testing.T) {
	hub := NewHub()

	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	carol := newTestClient(hub, "carol")

	hub.JoinRoom(alice, "match-1", "user-alice")
	hub.JoinRoom(bob, "match-1", "user-bob")
	hub.JoinRoom(carol, "match-2", "user-carol")

	// Сбрасываем user_joined, пришедший alice при входе bob.
	receiveEvent(t, alice)

	hub.BroadcastToRoom("match-1", EventScoreUpdated, map[string]int{"score_home": 1})

	for _, client := range []*Client{alice, bob} {
		msg := receiveEvent(t, client)
		if msg.Event != EventScoreUpdated {
			t.Errorf("client %s got event %q, want %q", client.SessionID, msg.Event, EventScoreUpdated)
		}
		if msg.RoomID != "match-1" {
			t.Errorf("client %s got room %q, want match-1", client.SessionID, msg.RoomID)
		}
	}

	// Комнаты изолированы: сосед по другому матчу ничего не видит.
	assertNoEvent(t, carol)
}

func TestHub_BroadcastToEmptyRoomIsNoop(t *testing.T) {
	hub := NewHub()
	// Не должно паниковать и не должно создать комнату.
	hub.BroadcastToRoom("nobody-here", EventNewMessage, "hello")
	if size := hub.RoomSize("nobody-here"); size != 0 {
		t.Errorf("RoomSize = %d, want 0", size)
	}
}

func TestHub_JoinRoomNotifiesOthersOnly(t *testing.T) {
	hub := NewHub()

	alice := newTestClient(hub, "alice")
	hub.JoinRoom(alice, "match-1", "user-alice")
	// Первый участник: уведомлять некого, и себе ничего не приходит.
	assertNoEvent(t, alice)

	bob := newTestClient(hub, "bob")
	hub.JoinRoom(bob, "match-1", "user-bob")

	msg := receiveEvent(t, alice)
	if msg.Event != EventUserJoined {
		t.Errorf("alice got event %q, want %q", msg.Event, EventUserJoined)
	}
	payload, ok := msg.Payload.(map[string]interface{})
	if !ok {
		t.Fatalf("payload has type %T, want object", msg.Payload)
	}
	if payload["user_id"] != "user-bob" {
		t.Errorf("payload user_id = %v, want user-bob", payload["user_id"])
	}

	// Отправитель собственное user_joined не получает.
	assertNoEvent(t, bob)
}

func TestHub_ClientInMultipleRooms(t *testing.T) {
	hub := NewHub()

	watcher := newTestClient(hub, "watcher")
	hub.JoinRoom(watcher, "match-1", "user-w")
	hub.JoinRoom(watcher, "match-2", "user-w")

	hub.BroadcastToRoom("match-1", EventNewMessage, "first")
	hub.BroadcastToRoom("match-2", EventNewMessage, "second")

	if got := receiveEvent(t, watcher).RoomID; got != "match-1" {
		t.Errorf("first event room = %q, want match-1", got)
	}
	if got := receiveEvent(t, watcher).RoomID; got != "match-2" {
		t.Errorf("second event room = %q, want match-2", got)
	}
}

func TestHub_RemoveClient(t *testing.T) {
	hub := NewHub()

	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	hub.JoinRoom(alice, "match-1", "user-alice")
	hub.JoinRoom(bob, "match-1", "user-bob")
	receiveEvent(t, alice)

	hub.removeClient(bob)

	if size := hub.RoomSize("match-1"); size != 1 {
		t.Errorf("RoomSize after removal = %d, want 1", size)
	}
	if !bob.IsClosed {
		t.Error("removed client send channel not marked closed")
	}

	// Дальнейшие рассылки не трогают отключённого клиента.
	hub.BroadcastToRoom("match-1", EventNewMessage, "still here")
	if msg := receiveEvent(t, alice); msg.Event != EventNewMessage {
		t.Errorf("alice got event %q, want %q", msg.Event, EventNewMessage)
	}

	hub.removeClient(alice)
	if size := hub.RoomSize("match-1"); size != 0 {
		t.Errorf("RoomSize after last removal = %d, want 0", size)
	}
}

func TestHub_SlowClientDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()

	slow := newTestClient(hub, "slow")
	slow.Send = make(chan []byte, 1)
	hub.JoinRoom(slow, "match-1", "user-slow")

	hub.BroadcastToRoom("match-1", EventNewMessage, "one")
	// Буфер полон: это сообщение будет отброшено, без блокировки.
	hub.BroadcastToRoom("match-1", EventNewMessage, "two")

	if got := len(slow.Send); got != 1 {
		t.Errorf("buffered messages = %d, want 1", got)
	}
}

func TestClient_HandleInboundPing(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "pinger")

	client.handleInbound([]byte(`{"event":"ping","data":{"timestamp":1712345678}}`))

	msg := receiveEvent(t, client)
	if msg.Event != EventPong {
		t.Fatalf("event = %q, want %q", msg.Event, EventPong)
	}
	payload, ok := msg.Payload.(map[string]interface{})
	if !ok {
		t.Fatalf("payload has type %T, want object", msg.Payload)
	}
	if ts, _ := payload["timestamp"].(float64); int64(ts) != 1712345678 {
		t.Errorf("pong timestamp = %v, want 1712345678", payload["timestamp"])
	}
}

func TestClient_HandleInboundJoinChat(t *testing.T) {
	hub := NewHub()
	client := newTestClient(hub, "joiner")

	client.handleInbound([]byte(`{"event":"join_chat","data":{"match_id":"match-9","user_id":"user-1"}}`))

	if size := hub.RoomSize("match-9"); size != 1 {
		t.Errorf("RoomSize = %d, want 1 after join_chat", size)
	}

	// Мусорные и неизвестные события игнорируются молча.
	client.handleInbound([]byte(`not json`))
	client.handleInbound([]byte(`{"event":"join_chat","data":{}}`))
	client.handleInbound([]byte(`{"event":"leave_galaxy","data":{}}`))
	if size := hub.RoomSize("match-9"); size != 1 {
		t.Errorf("RoomSize = %d, want 1 after garbage input", size)
	}
}
