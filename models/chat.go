package models

import (
	"time"

	"github.com/google/uuid"
)

// Chat - чат-комната матча, создаётся вместе с матчем (1:1).
// FinishedAt выставляется независимо от удаления матча: чат можно
// закрыть, не трогая сам матч.
type Chat struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	MatchID    uuid.UUID  `json:"match_id" db:"match_id"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" db:"finished_at"`
}

// IsFinished сообщает, закрыт ли чат для новых сообщений.
func (c *Chat) IsFinished() bool {
	return c.FinishedAt != nil
}

// Message - сообщение чата. Неизменяемо после создания.
type Message struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ChatID    uuid.UUID `json:"chat_id" db:"chat_id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
