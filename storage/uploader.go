package storage

import (
	"context"
	"io"
)

// UploadResult описывает сохранённый объект в архивном хранилище.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader: внешнее объектное хранилище для архивов чатов.
// Архивы пишутся один раз и обратно сервисом не читаются.
type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
}
