package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mentalist/counseling_backend/internal/service"
)

// AvailableCounselors lists counselors with approved weekly availability.
func (h *Handlers) AvailableCounselors(c *fiber.Ctx) error {
	counselors, err := h.availability.ListApprovedCounselors(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, counselors)
}

// AvailableSlots lists bookable slots of one counselor on ?date= (today by default).
func (h *Handlers) AvailableSlots(c *fiber.Ctx) error {
	counselorID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	date := h.today()
	if raw := c.Query("date"); raw != "" {
		if date, err = h.parseDate(raw); err != nil {
			return err
		}
	}
	slots, err := h.slots.ListAvailable(c.UserContext(), counselorID, date)
	if err != nil {
		return err
	}
	return ok(c, slots)
}

func (h *Handlers) SubmitWeeklySchedule(c *fiber.Ctx) error {
	var req weeklyScheduleRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	inputs := make([]service.WindowInput, 0, len(req.Schedules))
	for _, s := range req.Schedules {
		inputs = append(inputs, s.input())
	}

	windows, err := h.availability.SubmitWeeklyWindows(c.UserContext(), actorID(c), inputs)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, windows, "Weekly schedule submitted for admin approval")
}

// SubmitWeeklyWindow adds one pending window; overlapping a pending or approved
// window of the same weekday is a conflict.
func (h *Handlers) SubmitWeeklyWindow(c *fiber.Ctx) error {
	var req weeklyWindowRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	window, err := h.availability.SubmitWeeklyWindow(c.UserContext(), actorID(c), req.input())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, window, "Weekly window submitted for admin approval")
}

func (h *Handlers) WeeklySchedule(c *fiber.Ctx) error {
	ctx := c.UserContext()
	windows, err := h.availability.ListWindows(ctx, actorID(c))
	if err != nil {
		return err
	}
	hasSetup, err := h.availability.HasWeeklySetup(ctx, actorID(c))
	if err != nil {
		return err
	}
	return ok(c, fiber.Map{
		"schedules":           windows,
		"has_weekly_schedule": hasSetup,
	})
}

func (h *Handlers) SubmitScheduleRequest(c *fiber.Ctx) error {
	var req scheduleRequestRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	date, err := h.parseDate(req.ScheduledDate)
	if err != nil {
		return err
	}
	request, err := h.requests.Submit(c.UserContext(), actorID(c), service.ScheduleRequestInput{
		Date:      date,
		StartTime: *req.StartTime,
		EndTime:   *req.EndTime,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, request, "Schedule submitted for admin approval")
}

func (h *Handlers) ScheduleRequests(c *fiber.Ctx) error {
	requests, err := h.requests.ListOwn(c.UserContext(), actorID(c))
	if err != nil {
		return err
	}
	return ok(c, requests)
}
