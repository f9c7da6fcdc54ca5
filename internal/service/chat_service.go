package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/apperr"
	"github.com/mentalist/counseling_backend/internal/model"
	"github.com/mentalist/counseling_backend/internal/repository"
	"go.uber.org/zap"
)

const maxMessageLength = 5000

// ChatService stores messages exchanged on confirmed bookings.
type ChatService struct {
	bookings BookingStore
	messages MessageStore
	location *time.Location
	logger   *zap.Logger
}

func NewChatService(bookings BookingStore, messages MessageStore, settings Settings, logger *zap.Logger) *ChatService {
	settings = settings.withDefaults()
	return &ChatService{bookings: bookings, messages: messages, location: settings.Location, logger: logger}
}

// Conversations lists confirmed bookings of the actor with their last message
// and the number of messages the actor has not read yet.
func (s *ChatService) Conversations(ctx context.Context, actorID uuid.UUID) ([]*model.Conversation, error) {
	confirmed := model.BookingStatusConfirmed
	bookings, err := s.bookings.List(ctx, repository.BookingFilter{Participant: &actorID, Status: &confirmed})
	if err != nil {
		return nil, err
	}

	convs := make([]*model.Conversation, 0, len(bookings))
	for _, b := range bookings {
		last, err := s.messages.Last(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		unread, err := s.messages.CountUnread(ctx, b.ID, actorID)
		if err != nil {
			return nil, err
		}
		other := b.CounselorID
		if isCounselorFor(actorID, b) {
			other = b.UserID
		}
		convs = append(convs, &model.Conversation{
			BookingID:   b.ID,
			OtherUserID: other,
			ScheduledAt: b.ScheduledAt(s.location),
			LastMessage: last,
			UnreadCount: unread,
		})
	}
	return convs, nil
}

func (s *ChatService) chatBooking(ctx context.Context, actorID, bookingID uuid.UUID) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, apperr.NotFound(apperr.ReasonBookingNotFound, "booking not found")
	}
	if !isParticipant(actorID, b) {
		return nil, apperr.Forbidden(apperr.ReasonNotParticipant, "not a participant of this booking")
	}
	if b.Status != model.BookingStatusConfirmed {
		return nil, apperr.New(apperr.KindInvalidState, apperr.ReasonBookingNotConfirmed, "chat is only available for confirmed bookings")
	}
	return b, nil
}

// Messages returns the conversation of a booking and marks the messages
// addressed to the actor as read. A failure to mark them is only logged.
func (s *ChatService) Messages(ctx context.Context, actorID, bookingID uuid.UUID) ([]*model.Message, error) {
	if _, err := s.chatBooking(ctx, actorID, bookingID); err != nil {
		return nil, err
	}
	msgs, err := s.messages.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if _, err := s.messages.MarkRead(ctx, bookingID, actorID); err != nil {
		s.logger.Warn("Failed to mark messages read",
			zap.String("booking_id", bookingID.String()),
			zap.Error(err))
	}
	return msgs, nil
}

func (s *ChatService) Send(ctx context.Context, actorID, bookingID uuid.UUID, content string, kind model.MessageType) (*model.Message, error) {
	if content == "" || len(content) > maxMessageLength {
		return nil, apperr.Validation(fmt.Sprintf("content must be 1 to %d characters", maxMessageLength))
	}
	if kind == "" {
		kind = model.MessageTypeText
	}
	switch kind {
	case model.MessageTypeText, model.MessageTypeImage, model.MessageTypeFile, model.MessageTypeAudio:
	default:
		return nil, apperr.Validation(fmt.Sprintf("unknown message type %q", kind))
	}

	b, err := s.chatBooking(ctx, actorID, bookingID)
	if err != nil {
		return nil, err
	}
	recipient := b.CounselorID
	if isCounselorFor(actorID, b) {
		recipient = b.UserID
	}

	msg := &model.Message{
		BookingID:   bookingID,
		SenderID:    actorID,
		RecipientID: recipient,
		Content:     content,
		MessageType: kind,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.logger.Debug("Message sent",
		zap.String("booking_id", bookingID.String()),
		zap.String("sender_id", actorID.String()))

	return msg, nil
}
