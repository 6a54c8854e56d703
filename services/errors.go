package services

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrSlotUnavailable   = errors.New("time slot unavailable")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrOutsideHours      = errors.New("outside working hours")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAlreadyExists     = errors.New("already exists")
	ErrAlreadyClockedIn  = errors.New("already clocked in")
	ErrNotClockedIn      = errors.New("no open clock entry")
	ErrChannelDisabled   = errors.New("notification channel not configured")
	ErrInactiveReference = errors.New("referenced record is inactive")
)
