package handlers

import (
	"net/http"

	"github.com/ifsports/match-comments-service/middleware"
	"github.com/ifsports/match-comments-service/services"
)

type CommentHandler struct {
	commentService services.CommentService
}

func NewCommentHandler(cs services.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: cs,
	}
}

type commentInput struct {
	Body string `json:"body"`
}

// ListHandler обрабатывает GET /api/v1/matches/{matchID}/comments
func (h *CommentHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	comments, err := h.commentService.ListByMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"comments": comments}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByIDHandler обрабатывает GET /api/v1/matches/{matchID}/comments/{commentID}
func (h *CommentHandler) GetByIDHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	commentID, err := getUUIDFromURL(r, "commentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	comment, err := h.commentService.GetByID(r.Context(), matchID, commentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"comment": comment}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CreateHandler обрабатывает POST /api/v1/matches/{matchID}/comments
func (h *CommentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to create comment")
		return
	}

	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input commentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	comment, err := h.commentService.Create(r.Context(), actor, matchID, input.Body)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"comment": comment}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UpdateHandler обрабатывает PUT /api/v1/matches/{matchID}/comments/{commentID}
func (h *CommentHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to update comment")
		return
	}

	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	commentID, err := getUUIDFromURL(r, "commentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input commentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := h.commentService.Update(r.Context(), actor, matchID, commentID, input.Body); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteHandler обрабатывает DELETE /api/v1/matches/{matchID}/comments/{commentID}
func (h *CommentHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to delete comment")
		return
	}

	matchID, err := getUUIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	commentID, err := getUUIDFromURL(r, "commentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.commentService.Delete(r.Context(), actor, matchID, commentID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
