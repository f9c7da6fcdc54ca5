package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// Notifications lists the caller's inbox; ?unread=true drops read entries.
func (h *Handlers) Notifications(c *fiber.Ctx) error {
	items, err := h.inbox.List(c.UserContext(), actorID(c), c.QueryBool("unread"))
	if err != nil {
		return err
	}
	return ok(c, items)
}

func (h *Handlers) MarkNotificationRead(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.inbox.MarkRead(c.UserContext(), actorID(c), id); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, nil, "Notification marked as read")
}

func (h *Handlers) MarkAllNotificationsRead(c *fiber.Ctx) error {
	n, err := h.inbox.MarkAllRead(c.UserContext(), actorID(c))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{"updated": n}, "")
}
