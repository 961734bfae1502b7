package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed       = errors.New("validation failed")
	ErrNegativeScore          = errors.New("score values must be non-negative")
	ErrCommentBodyRequired    = errors.New("comment body is required")
	ErrMessageBodyRequired    = errors.New("message body is required")
	ErrInvalidStatusValue     = errors.New("invalid match status value")
	ErrInvalidStateTransition = errors.New("invalid match status transition")

	// Ошибки конфликтов
	ErrMatchConflict = errors.New("match already exists")
	ErrChatConflict  = errors.New("chat for this match already exists")

	// Чат закрыт: новые сообщения не принимаются
	ErrChatClosed = errors.New("chat is closed")

	// Ошибки, специфичные для сущностей (дают больше контекста, чем ErrNotFound)
	ErrMatchNotFound   = errors.New("match not found")
	ErrChatNotFound    = errors.New("chat not found")
	ErrCommentNotFound = errors.New("comment not found")

	// Завершение матча отменено: брокер не принял событие о завершении.
	// Матч остаётся в активном хранилище.
	ErrFinishPublishFailed = errors.New("match finish aborted: finished event was not accepted by the broker")
)
