package models

import (
	"time"

	"github.com/google/uuid"
)

type MessageStatus string

const (
	MessageProcessing MessageStatus = "processing"
	MessageCompleted  MessageStatus = "completed"
	MessageError      MessageStatus = "error"
)

// Message is one chat turn. DonnaResponse stays nil while the turn is
// processing.
type Message struct {
	ID            uuid.UUID
	RequestID     uuid.UUID
	UserID        UserID
	UserMessage   string
	DonnaResponse *string
	Status        MessageStatus
	CreatedAt     time.Time
}

// Turn is a completed exchange as replayed to the model or the client.
type Turn struct {
	UserMessage   string `json:"user_message"`
	DonnaResponse string `json:"donna_response"`
}
