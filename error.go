package pydock

import "fmt"

// CommandError annotates a failed operation with its unit of work. The cause
// is preserved for unwrapping.
type CommandError struct {
	message string
	cause   error
}

func (e *CommandError) Error() string {
	if e.cause == nil {
		return e.message
	}
	return fmt.Sprintf("%s: %s", e.message, e.cause)
}

func (e *CommandError) Unwrap() error {
	return e.cause
}

func newCommandError(message string, cause error) *CommandError {
	return &CommandError{message: message, cause: cause}
}
