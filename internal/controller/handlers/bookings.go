package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mentalist/counseling_backend/internal/apperr"
	"github.com/mentalist/counseling_backend/internal/model"
	"github.com/mentalist/counseling_backend/internal/service"
)

// ListBookings returns the caller's bookings, optionally filtered by ?status=.
func (h *Handlers) ListBookings(c *fiber.Ctx) error {
	var status *model.BookingStatus
	if raw := c.Query("status"); raw != "" {
		s := model.BookingStatus(raw)
		status = &s
	}
	bookings, err := h.bookings.List(c.UserContext(), actorID(c), status)
	if err != nil {
		return err
	}
	return ok(c, bookings)
}

func (h *Handlers) TodayBookings(c *fiber.Ctx) error {
	bookings, err := h.bookings.Today(c.UserContext(), actorID(c))
	if err != nil {
		return err
	}
	return ok(c, bookings)
}

func (h *Handlers) CreateBooking(c *fiber.Ctx) error {
	var req createBookingRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	counselorID, err := parseID(req.CounselorID, "counselor_id")
	if err != nil {
		return err
	}
	slotID, err := parseID(req.SlotID, "slot_id")
	if err != nil {
		return err
	}

	booking, err := h.bookings.Create(c.UserContext(), actorID(c), service.CreateBookingInput{
		CounselorID: counselorID,
		SlotID:      slotID,
		Notes:       req.Notes,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, booking, "Booking created, waiting for the counselor to confirm")
}

func (h *Handlers) GetBooking(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	booking, err := h.bookings.Get(c.UserContext(), actorID(c), id)
	if err != nil {
		return err
	}
	return ok(c, booking)
}

func (h *Handlers) CancelBooking(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	booking, err := h.bookings.Cancel(c.UserContext(), actorID(c), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, booking, "Booking cancelled")
}

func (h *Handlers) ConfirmBooking(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	booking, err := h.bookings.Confirm(c.UserContext(), actorID(c), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, booking, "Booking confirmed")
}

func (h *Handlers) RejectBooking(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req rejectBookingRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}
	booking, err := h.bookings.Reject(c.UserContext(), actorID(c), id, req.Reason)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, booking, "Booking rejected")
}

func (h *Handlers) CompleteBooking(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	booking, err := h.bookings.Complete(c.UserContext(), actorID(c), id)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, booking, "Booking completed")
}

func (h *Handlers) RescheduleBooking(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req rescheduleRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	var in service.RescheduleInput
	if req.SlotID != "" {
		slotID, err := parseID(req.SlotID, "slot_id")
		if err != nil {
			return err
		}
		in.SlotID = &slotID
	}
	if req.BookingDate != "" {
		date, err := h.parseDate(req.BookingDate)
		if err != nil {
			return err
		}
		in.Date = &date
	}
	in.Time = req.BookingTime
	if in.SlotID == nil && (in.Date == nil || in.Time == nil) {
		return apperr.Validation("provide slot_id or both booking_date and booking_time")
	}

	booking, err := h.bookings.Reschedule(c.UserContext(), actorID(c), id, in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, booking, "Booking rescheduled, waiting for confirmation")
}
