package common

import (
	"errors"
	"strings"
)

// SimpleTimeFormat a common, but non-implemented time format in golang
const SimpleTimeFormat = "2006-01-02 15:04:05"

// ErrNilPointer is returned when a required pointer is nil
var ErrNilPointer = errors.New("nil pointer")

// multiError holds all errors added through AppendError
type multiError struct {
	loadedErrors []error
}

// AppendError appends an error to a list of existing errors. Either argument
// can be nil. Calling errors.Is on the result matches any appended error
func AppendError(original, incoming error) error {
	if incoming == nil {
		return original
	}
	if original == nil {
		return incoming
	}
	var me *multiError
	if errors.As(original, &me) {
		me.loadedErrors = append(me.loadedErrors, incoming)
		return me
	}
	return &multiError{loadedErrors: []error{original, incoming}}
}

// Error displays all errors comma separated
func (e *multiError) Error() string {
	allErrors := make([]string, len(e.loadedErrors))
	for x := range e.loadedErrors {
		allErrors[x] = e.loadedErrors[x].Error()
	}
	return strings.Join(allErrors, ", ")
}

// Unwrap returns all of the errors in the multiError
func (e *multiError) Unwrap() []error {
	return e.loadedErrors
}
