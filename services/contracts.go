package services

import (
	"context"

	"github.com/ifsports/match-comments-service/models"
)

// RoomBroadcaster доставляет типизированные события всем подключениям
// комнаты матча. Доставка best-effort и не блокирует вызывающего:
// источником истины остаётся запись в БД.
type RoomBroadcaster interface {
	BroadcastToRoom(roomID string, event string, payload interface{})
}

// FinishedPublisher отдаёт брокеру событие о завершении матча.
// Возврат ошибки означает, что событие НЕ принято и переход finish
// должен быть отменён.
type FinishedPublisher interface {
	PublishMatchFinished(ctx context.Context, snapshot models.MatchSnapshot) error
}

// AuditEmitter принимает записи аудита на асинхронную отправку.
// Никогда не блокирует и не возвращает ошибок вызывающему.
type AuditEmitter interface {
	Emit(record models.AuditRecord)
}

// TranscriptArchiver выгружает историю закрытого чата во внешнее
// хранилище. Ошибка архивации не отменяет закрытие чата.
type TranscriptArchiver interface {
	ArchiveTranscript(ctx context.Context, chat *models.Chat, messages []*models.Message) (string, error)
}
