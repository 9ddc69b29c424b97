package services

import "errors"

// Errors shared by the services and mapped to HTTP statuses by the handlers.
var (
	ErrNotFound      = errors.New("requested resource not found")
	ErrEventNotFound = errors.New("event not found")

	// Validation
	ErrValidationFailed   = errors.New("validation failed")
	ErrEventNameRequired  = errors.New("event name is required")
	ErrInvalidDate        = errors.New("invalid date (YYYY-MM-DD)")
	ErrInvalidCourseID    = errors.New("invalid course_id")
	ErrInvalidConfig      = errors.New("invalid event config")
	ErrInvalidCourse      = errors.New("course does not exist")
	ErrInvalidAssociation = errors.New("association does not exist")

	// Brackets
	ErrNotMatchPlay          = errors.New("event is not match play")
	ErrBracketFormat         = errors.New("bracket generation requires the classic match play format")
	ErrNotEnoughPlayers      = errors.New("at least two registered players are required")
	ErrBracketEmpty          = errors.New("bracket has no rounds")
	ErrSlotOutOfRange        = errors.New("bracket slot out of range")
	ErrInvalidSlot           = errors.New("invalid bracket slot")
	ErrChampionshipDisabled  = errors.New("championship hub is not enabled")
	ErrClassificationMissing = errors.New("event has no final classification")

	// Auth
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")
)
