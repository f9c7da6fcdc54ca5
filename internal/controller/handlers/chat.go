package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mentalist/counseling_backend/internal/model"
)

func (h *Handlers) Conversations(c *fiber.Ctx) error {
	conversations, err := h.chat.Conversations(c.UserContext(), actorID(c))
	if err != nil {
		return err
	}
	return ok(c, conversations)
}

func (h *Handlers) Messages(c *fiber.Ctx) error {
	bookingID, err := pathID(c, "bookingId")
	if err != nil {
		return err
	}
	messages, err := h.chat.Messages(c.UserContext(), actorID(c), bookingID)
	if err != nil {
		return err
	}
	return ok(c, messages)
}

func (h *Handlers) SendMessage(c *fiber.Ctx) error {
	bookingID, err := pathID(c, "bookingId")
	if err != nil {
		return err
	}
	var req sendMessageRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	msg, err := h.chat.Send(c.UserContext(), actorID(c), bookingID, req.Content, model.MessageType(req.MessageType))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, msg, "")
}
