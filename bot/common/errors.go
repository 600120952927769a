package common

import (
	"errors"
	"fmt"
	"time"
)

// Guard-clause failures raised before a handler runs, and local response-state
// violations. All are reported inline to the invoking user; none are logged
// as handler failures.
var (
	// ErrForbidden indicates the member lacks a required permission
	ErrForbidden = errors.New("you do not have permission to use this command")

	// ErrAlreadyResponded indicates a second response attempt for one
	// interaction; purely local, nothing was sent
	ErrAlreadyResponded = errors.New("interaction has already been responded to")
)

// CooldownError indicates a command was invoked before its cooldown elapsed
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("command is on cooldown, retry in %.0f seconds", e.Remaining.Seconds())
}

// UserError wraps a validation failure whose message is safe to show verbatim.
// Handlers use it to distinguish bad input from internal faults.
type UserError struct {
	Message string
}

func (e *UserError) Error() string {
	return e.Message
}

// NewUserError creates a user-visible validation error
func NewUserError(format string, args ...any) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}
