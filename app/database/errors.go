package database

import (
	"fmt"
)

// StoreError reports a persistence failure other than the expected
// "already exists" outcome of InsertIfAbsent.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
