package models

import (
	"time"

	"github.com/google/uuid"
)

// Comment - комментарий к матчу. Привязан к матчу напрямую (не к чату),
// тело можно редактировать, ограничений на количество нет.
type Comment struct {
	ID        uuid.UUID `json:"id" db:"id"`
	MatchID   uuid.UUID `json:"match_id" db:"match_id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
