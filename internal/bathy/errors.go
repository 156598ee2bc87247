package bathy

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is matched by errors.Is for every *EmptyInputError.
	ErrEmptyInput = errors.New("empty input")

	// ErrInvalidParameter is matched by errors.Is for every *InvalidParameterError.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDegenerateGeometry is matched by errors.Is for every *DegenerateGeometryError.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)

// EmptyInputError is returned when there is nothing to build a surface from.
type EmptyInputError struct {
	msg string
}

func (e *EmptyInputError) Error() string {
	return e.msg
}

func (e *EmptyInputError) Is(target error) bool {
	return target == ErrEmptyInput
}

// InvalidParameterError names the offending parameter and the value it was given.
type InvalidParameterError struct {
	Name   string
	Value  any
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Name, e.Value, e.Reason)
}

func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}

// DegenerateGeometryError is returned when the point distribution cannot
// produce a usable grid.
type DegenerateGeometryError struct {
	msg string
}

func (e *DegenerateGeometryError) Error() string {
	return e.msg
}

func (e *DegenerateGeometryError) Is(target error) bool {
	return target == ErrDegenerateGeometry
}
