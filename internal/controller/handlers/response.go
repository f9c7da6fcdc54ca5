package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mentalist/counseling_backend/internal/apperr"
	"github.com/mentalist/counseling_backend/internal/model"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

func respond(c *fiber.Ctx, status int, data any, message string) error {
	return c.Status(status).JSON(Response{Success: true, Data: data, Message: message})
}

func ok(c *fiber.Ctx, data any) error {
	return respond(c, fiber.StatusOK, data, "")
}

// StatusFor maps a domain error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	case apperr.KindConflict:
		return fiber.StatusConflict
	case apperr.KindInvalidState:
		return fiber.StatusBadRequest
	case apperr.KindValidation:
		return fiber.StatusUnprocessableEntity
	case apperr.KindUpstreamUnavailable:
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders errors returned from handlers and middleware.
func (h *Handlers) ErrorHandler(c *fiber.Ctx, err error) error {
	if e, ok := apperr.As(err); ok {
		msg := e.Message
		if msg == "" {
			msg = strings.ReplaceAll(e.Reason, "_", " ")
		}
		return c.Status(StatusFor(e.Kind)).JSON(Response{Message: msg, Reason: e.Reason})
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(Response{Message: fe.Message})
	}

	h.logger.Error("Request failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return c.Status(fiber.StatusInternalServerError).JSON(Response{
		Message: "internal server error",
		Reason:  apperr.ReasonInternal,
	})
}

// bind decodes the JSON body into dst and runs its validate tags.
// An empty body leaves dst untouched so optional payloads still validate.
func (h *Handlers) bind(c *fiber.Ctx, dst any) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(dst); err != nil {
			return apperr.Validation("malformed request body")
		}
	}
	if err := h.validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation(err.Error())
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch {
		case fe.Tag() == "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case fe.Param() != "":
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s must be a valid %s", fe.Field(), fe.Tag()))
		}
	}
	return apperr.Validation(strings.Join(parts, "; "))
}

func pathID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return parseID(c.Params(name), name)
}

func parseID(raw, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Validation(fmt.Sprintf("invalid %s", name))
	}
	return id, nil
}

func (h *Handlers) parseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, s, h.location)
	if err != nil {
		return time.Time{}, apperr.Validation(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return d, nil
}

func (h *Handlers) today() time.Time {
	now := h.clock.Now().In(h.location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, h.location)
}

func actorID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(localUserID).(uuid.UUID)
	return id
}

func actorRole(c *fiber.Ctx) model.Role {
	r, _ := c.Locals(localRole).(model.Role)
	return r
}
