package handlers

import (
	"github.com/gofiber/fiber/v2"
)

func (h *Handlers) AdminCounselors(c *fiber.Ctx) error {
	counselors, err := h.admin.ListCounselors(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, counselors)
}

func (h *Handlers) AdminUsers(c *fiber.Ctx) error {
	users, err := h.admin.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, users)
}

func (h *Handlers) ToggleCounselorStatus(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	active, err := h.admin.ToggleCounselorActive(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{"id": id, "is_active": active}, "Counselor status updated")
}

func (h *Handlers) ToggleUserStatus(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	active, err := h.admin.ToggleUserActive(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{"id": id, "is_active": active}, "User status updated")
}

func (h *Handlers) ReportStats(c *fiber.Ctx) error {
	stats, err := h.admin.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, stats)
}

func (h *Handlers) PendingScheduleRequests(c *fiber.Ctx) error {
	requests, err := h.requests.ListPending(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, requests)
}

func (h *Handlers) ApproveScheduleRequest(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req adminNotesRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	request, err := h.requests.Approve(c.UserContext(), id, req.AdminNotes)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, request, "Schedule approved")
}

func (h *Handlers) RejectScheduleRequest(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req adminNotesRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	request, err := h.requests.Reject(c.UserContext(), id, req.AdminNotes)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, request, "Schedule rejected")
}

func (h *Handlers) PendingWeeklySchedules(c *fiber.Ctx) error {
	pending, err := h.availability.ListPending(c.UserContext())
	if err != nil {
		return err
	}
	return ok(c, pending)
}

// ApproveWeeklySchedule approves every pending window of the counselor in :id
// and generates their slots.
func (h *Handlers) ApproveWeeklySchedule(c *fiber.Ctx) error {
	counselorID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req adminNotesRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	result, err := h.availability.Approve(c.UserContext(), counselorID, req.AdminNotes)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, result, "Weekly schedule approved")
}

// RejectWeeklySchedule drops every pending window of the counselor in :id.
func (h *Handlers) RejectWeeklySchedule(c *fiber.Ctx) error {
	counselorID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req adminNotesRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	removed, err := h.availability.Reject(c.UserContext(), counselorID, req.AdminNotes)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, fiber.Map{"rejected": removed}, "Weekly schedule rejected")
}
