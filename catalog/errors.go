package catalog

import (
	"errors"
	"fmt"
)

var ErrParse = errors.New("parse error")

// ParseError is returned when a course block matches none of the known
// markup shapes, or one of its numeric fields cannot be parsed.
type ParseError struct {
	Code   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %v: %v: %v", e.Code, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %v: %v", e.Code, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
