package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrConstruction marks a request that could not be built. It is carried
	// through every later transition and surfaces at execution.
	ErrConstruction = errors.New("request construction failed")
	// ErrTransport marks a failure of the underlying HTTP round trip.
	ErrTransport = errors.New("transport failure")
	// ErrHeader marks an invalid header name or value.
	ErrHeader = errors.New("invalid header")
	// ErrConsumed is carried by a builder state that has already been
	// transitioned or executed.
	ErrConsumed = errors.New("builder already consumed")

	errMissingValue     = errors.New("missing value")
	errMissingParameter = errors.New("expecting parameter")
	errUninitialized    = errors.New("builder not initialized")
	errInvalidName      = errors.New("not a valid header field name")
	errInvalidValue     = errors.New("not a valid header field value")
)

// ConstructionError records which step of the builder chain failed.
type ConstructionError struct {
	Op  string
	Err error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrConstruction, e.Op, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

func (e *ConstructionError) Is(target error) bool {
	return target == ErrConstruction
}

// HeaderError is returned synchronously by SetHeader.
type HeaderError struct {
	Name string
	Err  error
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("%v %q: %v", ErrHeader, e.Name, e.Err)
}

func (e *HeaderError) Unwrap() error {
	return e.Err
}

func (e *HeaderError) Is(target error) bool {
	return target == ErrHeader
}
