package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

func (h *Handlers) RecordMood(c *fiber.Ctx) error {
	var req moodRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	var date *time.Time
	if req.EntryDate != "" {
		d, err := h.parseDate(req.EntryDate)
		if err != nil {
			return err
		}
		date = &d
	}
	entry, err := h.mood.Record(c.UserContext(), actorID(c), req.Mood, date)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, entry, "Mood saved")
}

func (h *Handlers) MoodWeek(c *fiber.Ctx) error {
	entries, err := h.mood.Week(c.UserContext(), actorID(c))
	if err != nil {
		return err
	}
	return ok(c, entries)
}
