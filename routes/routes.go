package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ifsports/match-comments-service/handlers"
	"github.com/ifsports/match-comments-service/middleware"
	"github.com/ifsports/match-comments-service/models"
)

func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	allowedOrigins []string,
	matchHandler *handlers.MatchHandler,
	chatHandler *handlers.ChatHandler,
	commentHandler *handlers.CommentHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Канал реального времени: комнату клиент выбирает после подключения.
	router.Get("/ws", webSocketHandler.ServeWs)

	router.Route("/api/v1/matches/{matchID}", func(r chi.Router) {
		// Публичные маршруты для просмотра
		r.Get("/", matchHandler.GetByIDHandler)
		r.Get("/chat", chatHandler.GetByMatchHandler)
		r.Get("/comments", commentHandler.ListHandler)
		r.Get("/comments/{commentID}", commentHandler.GetByIDHandler)

		// Управление жизненным циклом матча
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.RequireCapability(models.CapabilityManageMatches))

			r.Patch("/start-match", matchHandler.StartHandler)
			r.Patch("/update-score", matchHandler.UpdateScoreHandler)
			r.Delete("/end-match", matchHandler.FinishHandler)
			r.Patch("/chat/close-chat", chatHandler.CloseHandler)
		})

		// Комментарии к матчу
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.RequireCapability(models.CapabilityManageComments))

			r.Post("/comments", commentHandler.CreateHandler)
			r.Put("/comments/{commentID}", commentHandler.UpdateHandler)
			r.Delete("/comments/{commentID}", commentHandler.DeleteHandler)
		})
	})

	router.Route("/api/v1/chats/{chatID}/messages", func(r chi.Router) {
		r.Get("/", chatHandler.ListMessagesHandler)

		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate)
			r.Use(middleware.RequireCapability(models.CapabilityPostMessages))

			r.Post("/", chatHandler.CreateMessageHandler)
		})
	})
}
