package oerror

import "fmt"

// OomphError is the error type returned by the locomotion packages for failures that do not have a
// dedicated sentinel.
type OomphError struct {
	Err string
}

// New formats a new OomphError.
func New(format string, args ...any) *OomphError {
	return &OomphError{Err: fmt.Sprintf(format, args...)}
}

func (e *OomphError) Error() string {
	return e.Err
}
