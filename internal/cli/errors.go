package cli

import (
	"errors"
	"fmt"
)

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2 // bad parameters, config values, or command-line usage
)

// ExitError is returned by command handlers to end the process with Code.
// Param names the offending flag for parameter errors, e.g. "--coins".
type ExitError struct {
	Code    int
	Param   string
	Message string
}

func (e *ExitError) Error() string {
	if e.Param != "" {
		return fmt.Sprintf("invalid value for '%s': %s", e.Param, e.Message)
	}
	return e.Message
}

// usageError wraps a parameter problem that is not tied to one flag.
func usageError(err error) *ExitError {
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee
	}
	return &ExitError{Code: ExitUsage, Message: err.Error()}
}

// render formats err the way it is printed to stderr and picks the exit code.
// Errors that did not come from a handler are cobra usage errors.
func render(err error) (string, int) {
	ee := usageError(err)
	if ee.Code == ExitUsage {
		return "Error: " + ee.Error(), ee.Code
	}
	return ee.Error(), ee.Code
}
