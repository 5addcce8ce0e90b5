package location

import (
	"errors"
	"fmt"
	"strings"
)

var ErrNotFound = errors.New("location not found")

// ValidationError lists the missing or malformed fields of a request.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// StorageError wraps a persistent-store failure so handlers can report
// it as a server-side fault without leaking the raw driver error type.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string { return e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }
