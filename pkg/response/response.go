package response

import (
	"errors"
	"fmt"
)

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

//Error Codes
type ErrCode string

var (
	FAILED_REQUEST       ErrCode = "REQUEST_FAILED"
	BAD_REQUEST          ErrCode = "FAILED_TO_DECODE"
	VALIDATION_FAILED    ErrCode = "VALIDATION_FAILED"
	NOT_FOUND            ErrCode = "NOT_FOUND"
	LOCKED               ErrCode = "LOCKED"
	CONFLICT             ErrCode = "CONFLICT"
	SLOT_NOT_AVAILABLE   ErrCode = "SLOT_NOT_AVAILABLE"
	SLOT_BOOKED          ErrCode = "SLOT_BOOKED"
	HOLIDAY_BLOCKED      ErrCode = "HOLIDAY_BLOCKED"
	QUOTA_EXCEEDED       ErrCode = "QUOTA_EXCEEDED"
	LIMIT_BELOW_USAGE    ErrCode = "LIMIT_BELOW_USAGE"
	INVALID_TRANSITION   ErrCode = "INVALID_STATE_TRANSITION"
	REASSIGN_UNAVAILABLE ErrCode = "REASSIGNMENT_TARGET_UNAVAILABLE"
)

var (
	ErrBadRequest        = errors.New("bad request")
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("resource not found")
	ErrLocked            = errors.New("resource is locked")
	ErrConflict          = errors.New("conflict")
	ErrSlotNotAvailable  = errors.New("slot is not available")
	ErrSlotBooked        = errors.New("slot holds an active booking")
	ErrHolidayBlocked    = errors.New("date is blocked by a holiday")
	ErrQuotaExceeded     = errors.New("booking quota exceeded")
	ErrLimitBelowUsage   = errors.New("limit is below current usage")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrReassignTarget    = errors.New("reassignment target unavailable")
)

// QuotaExceededError carries the usage that caused the rejection so callers
// can show the remaining capacity.
type QuotaExceededError struct {
	PsychologistID string `json:"psychologist_id"`
	Window         string `json:"window"` // "weekly" or "monthly"
	Booked         int    `json:"booked"`
	Limit          int    `json:"limit"`
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s quota exceeded for psychologist %s: %d of %d booked",
		e.Window, e.PsychologistID, e.Booked, e.Limit)
}

func (e *QuotaExceededError) Unwrap() error { return ErrQuotaExceeded }

// LimitBelowUsageError is returned when an administrator tries to lower a
// limit under the count of slots already booked in that window.
type LimitBelowUsageError struct {
	PsychologistID string `json:"psychologist_id"`
	Window         string `json:"window"`
	Booked         int    `json:"booked"`
	Requested      int    `json:"requested"`
}

func (e *LimitBelowUsageError) Error() string {
	return fmt.Sprintf("%s limit %d is below current usage %d for psychologist %s",
		e.Window, e.Requested, e.Booked, e.PsychologistID)
}

func (e *LimitBelowUsageError) Unwrap() error { return ErrLimitBelowUsage }

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}
