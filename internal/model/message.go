package model

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
	MessageTypeFile  MessageType = "file"
	MessageTypeAudio MessageType = "audio"
)

type Message struct {
	ID          uuid.UUID   `json:"id"`
	BookingID   uuid.UUID   `json:"booking_id"`
	SenderID    uuid.UUID   `json:"sender_id"`
	RecipientID uuid.UUID   `json:"recipient_id"`
	Content     string      `json:"content"`
	MessageType MessageType `json:"message_type"`
	IsRead      bool        `json:"is_read"`
	ReadAt      *time.Time  `json:"read_at,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Conversation summarizes one confirmed booking from the point of view of a participant.
type Conversation struct {
	BookingID   uuid.UUID `json:"booking_id"`
	OtherUserID uuid.UUID `json:"other_user_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	LastMessage *Message  `json:"last_message"`
	UnreadCount int       `json:"unread_count"`
}
