package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Stream names (должны совпадать с мессенджер-ботом)
const (
	StreamEcopointSearch = "stream:ecopoint:search"
	StreamEcopointFound  = "stream:ecopoint:found"
)

// EcopointSearchEvent - входящий запрос на поиск от мессенджер-бота.
// The bot forwards lat/lng exactly as the chat location carried them.
type EcopointSearchEvent struct {
	RequestID uuid.UUID `json:"request_id" validate:"required"`
	To        string    `json:"to,omitempty"`
	Lat       FlexFloat `json:"lat"`
	Lng       FlexFloat `json:"lng"`
	Filter    string    `json:"filtro,omitempty"`
}

// EcopointFoundEvent - ответ, публикуемый после поиска
type EcopointFoundEvent struct {
	RequestID uuid.UUID       `json:"request_id"`
	To        string          `json:"to,omitempty"`
	Response  json.RawMessage `json:"response,omitempty"`
	Error     string          `json:"error,omitempty"`
	ErrorCode string          `json:"error_code,omitempty"`
}

// StreamMessage - сообщение из Redis Stream
type StreamMessage struct {
	ID   string
	Data string
}
