package notify

import (
	"context"
	"fmt"
	"html"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/model"
)

type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

type chatResolver interface {
	Lookup(ctx context.Context, userID uuid.UUID) (*model.Identity, error)
}

// TelegramSink messages recipients who linked a Telegram chat. Others are skipped.
type TelegramSink struct {
	bot   messageSender
	users chatResolver
}

func NewTelegramSink(b messageSender, users chatResolver) *TelegramSink {
	return &TelegramSink{bot: b, users: users}
}

func (s *TelegramSink) Name() string { return "telegram" }

func (s *TelegramSink) Deliver(ctx context.Context, e Event) error {
	ident, err := s.users.Lookup(ctx, e.RecipientID)
	if err != nil {
		return fmt.Errorf("lookup recipient: %w", err)
	}
	if ident == nil || ident.TelegramChatID == nil {
		return nil
	}

	_, err = s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    *ident.TelegramChatID,
		Text:      renderText(e),
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func renderText(e Event) string {
	str := func(key string) string {
		v, _ := e.Payload[key].(string)
		return html.EscapeString(v)
	}

	switch e.Kind {
	case model.EventNewBooking:
		return fmt.Sprintf("📅 <b>New booking request</b>\nScheduled at: %s", str("scheduled_at"))
	case model.EventBookingConfirmed:
		return fmt.Sprintf("✅ <b>Your booking is confirmed</b>\nScheduled at: %s", str("scheduled_at"))
	case model.EventScheduleSubmitted:
		return fmt.Sprintf("🗓 <b>Schedule submitted for review</b>\nCounselor: %s", str("counselor_name"))
	default:
		return html.EscapeString(string(e.Kind))
	}
}
