// Package apperr defines the domain error taxonomy shared by services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindForbidden           Kind = "forbidden"
	KindInvalidState        Kind = "invalid_state"
	KindConflict            Kind = "conflict"
	KindValidation          Kind = "validation_failed"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
)

// Reason codes returned to callers alongside the kind.
const (
	ReasonSlotNotFound          = "slot_not_found"
	ReasonSlotUnavailable       = "slot_unavailable"
	ReasonSlotMismatch          = "slot_counselor_mismatch"
	ReasonBookingNotFound       = "booking_not_found"
	ReasonCounselorNotFound     = "counselor_not_found"
	ReasonNotCounselor          = "not_a_counselor"
	ReasonCounselorNotAccepting = "counselor_not_accepting"
	ReasonAlreadySubmitted      = "already_submitted"
	ReasonScheduleConflict      = "schedule_conflict"
	ReasonRequestNotFound       = "schedule_request_not_found"
	ReasonUserNotFound          = "user_not_found"
	ReasonNotificationNotFound  = "notification_not_found"
	ReasonNotParticipant        = "not_participant"
	ReasonNotOwner              = "not_owner"
	ReasonNotAssignedCounselor  = "not_assigned_counselor"
	ReasonBookingNotConfirmed   = "booking_not_confirmed"
	ReasonInvalidTransition     = "invalid_transition"
	ReasonInvalidInput          = "invalid_input"
	ReasonPastSchedule          = "schedule_in_past"
	ReasonNotifierUnavailable   = "notifier_unavailable"
	ReasonRoleMismatch          = "role_mismatch"
	ReasonRateLimited           = "rate_limited"
	ReasonUnauthenticated       = "unauthenticated"
	ReasonInternal              = "internal_error"
)

// Error is a recoverable domain failure.
type Error struct {
	Kind    Kind
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Reason, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind and reason so sentinel values work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Reason == "" || e.Reason == t.Reason)
}

func New(kind Kind, reason, message string) *Error {
	return &Error{Kind: kind, Reason: reason, Message: message}
}

func NotFound(reason, message string) *Error  { return New(KindNotFound, reason, message) }
func Forbidden(reason, message string) *Error { return New(KindForbidden, reason, message) }
func Conflict(reason, message string) *Error  { return New(KindConflict, reason, message) }

func InvalidState(message string) *Error {
	return New(KindInvalidState, ReasonInvalidTransition, message)
}

func Validation(message string) *Error {
	return New(KindValidation, ReasonInvalidInput, message)
}

func Upstream(message string, err error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Reason: ReasonNotifierUnavailable, Message: message, Err: err}
}

// Sentinels for errors.Is in callers and tests.
var (
	ErrSlotNotFound     = NotFound(ReasonSlotNotFound, "")
	ErrSlotUnavailable  = Conflict(ReasonSlotUnavailable, "")
	ErrAlreadySubmitted = Conflict(ReasonAlreadySubmitted, "")
	ErrScheduleConflict = Conflict(ReasonScheduleConflict, "")
	ErrInvalidState     = New(KindInvalidState, "", "")
	ErrForbidden        = New(KindForbidden, "", "")
	ErrNotFound         = New(KindNotFound, "", "")
	ErrValidation       = New(KindValidation, "", "")
)

// As extracts a domain error from err.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of a domain error, or "" for unexpected faults.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}
