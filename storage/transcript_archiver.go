package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ifsports/match-comments-service/models"
)

// ChatTranscriptArchiver выгружает историю закрытого чата как JSON-объект
// во внешнее хранилище. Архив нужен downstream-потребителям: сам сервис
// его обратно не читает.
type ChatTranscriptArchiver struct {
	uploader FileUploader
}

func NewChatTranscriptArchiver(uploader FileUploader) *ChatTranscriptArchiver {
	return &ChatTranscriptArchiver{uploader: uploader}
}

type transcript struct {
	Chat     *models.Chat      `json:"chat"`
	Messages []*models.Message `json:"messages"`
}

// ArchiveTranscript возвращает ключ сохранённого объекта.
func (a *ChatTranscriptArchiver) ArchiveTranscript(ctx context.Context, chat *models.Chat, messages []*models.Message) (string, error) {
	body, err := json.Marshal(transcript{Chat: chat, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat transcript: %w", err)
	}

	key := fmt.Sprintf("transcripts/%s/%s.json", chat.MatchID, chat.ID)
	result, err := a.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	return result.Key, nil
}
