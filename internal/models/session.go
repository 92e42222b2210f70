package models

import (
	"time"

	"github.com/google/uuid"
)

// Session — bearer-сессия. Токен opaque (32 случайных байта, hex),
// наружу не сериализуем.
type Session struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
