package db

import (
	"errors"
	"fmt"
)

var ErrPersistence = errors.New("persistence error")

// PersistenceError is returned when a cached course set cannot be read or
// written. A missing cache still matches os.ErrNotExist through errors.Is.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("course set %v: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}
