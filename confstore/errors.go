package confstore

import (
	"fmt"
)

// ReadError indicates that configuration could not be read or parsed during
// store initialization.  A missing local file is not a ReadError; that case
// results in an empty store instead.
type ReadError struct {
	Location string
	Err      error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("Unable to read configuration from [%s]: %s", e.Location, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// CoercionError indicates that a configuration value could not be coerced
// to a string by GetString.
type CoercionError struct {
	Key string
	Err error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("Unable to coerce configuration value [%s] to a string: %s", e.Key, e.Err)
}

func (e *CoercionError) Unwrap() error {
	return e.Err
}
