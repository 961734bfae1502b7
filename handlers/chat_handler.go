package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/ifsports/match-comments-service/middleware"
	"github.com/ifsports/match-comments-service/services"
)

type ChatHandler struct {
	chatService    services.ChatService
	messageService services.MessageService
}

func NewChatHandler(cs services.ChatService, ms services.MessageService) *ChatHandler {
	return &ChatHandler{
		chatService:    cs,
		messageService: ms,
	}
}

// GetByMatchHandler обрабатывает GET /api/v1/matches/{matchID}/chat
func (h *ChatHandler) GetByMatchHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	chat, err := h.chatService.GetByMatchID(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"chat": chat}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CloseHandler обрабатывает PATCH /api/v1/matches/{matchID}/chat/close-chat
func (h *ChatHandler) CloseHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to close chat")
		return
	}

	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	chat, err := h.chatService.Close(r.Context(), actor, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"chat": chat}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMessagesHandler обрабатывает GET /api/v1/chats/{chatID}/messages
func (h *ChatHandler) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	chatID, err := getUUIDFromURL(r, "chatID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	messages, err := h.messageService.ListByChat(r.Context(), chatID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"messages": messages}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateMessageHandler обрабатывает POST /api/v1/chats/{chatID}/messages
func (h *ChatHandler) CreateMessageHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to post message")
		return
	}

	chatID, err := getUUIDFromURL(r, "chatID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		UserID uuid.UUID `json:"user_id"`
		Body   string    `json:"body"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	message, err := h.messageService.Create(r.Context(), actor, chatID, services.CreateMessageInput{
		UserID: input.UserID,
		Body:   input.Body,
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"message": message}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
