package attendance

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound is returned when an id does not match any registered user.
	ErrUserNotFound = errors.New("user not found")

	// ErrUnauthorized is the parent of every session related rejection.
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoSession    = fmt.Errorf("%w: no active session", ErrUnauthorized)
	ErrNotTeacher   = fmt.Errorf("%w: session is not a teacher", ErrUnauthorized)

	// ErrAlreadyCheckedIn is returned by AddAttendance when the daily guard is on.
	ErrAlreadyCheckedIn = errors.New("already checked in today")

	ErrInvalidRole = errors.New("role must be student or teacher")
)

var (
	errIDSpaceExhausted = errors.New("could not generate an unused user id")
	errMalformed        = errors.New("malformed stored value")
)
