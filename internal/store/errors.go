package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Code classifies a store failure independently of the driver behind it.
type Code string

const (
	CodeUniqueViolation     Code = "unique_violation"
	CodeForeignKeyViolation Code = "foreign_key_violation"
	CodeNotFound            Code = "not_found"
	CodeUndefinedTable      Code = "undefined_table"
	CodeUnknown             Code = "unknown"
)

// Error is what repositories return for every failed round-trip.
type Error struct {
	Code       Code
	Constraint string
	Err        error
}

func (e *Error) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("store %s (%s): %v", e.Code, e.Constraint, e.Err)
	}
	return fmt.Sprintf("store %s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

var (
	ErrNotFound = &Error{Code: CodeNotFound, Err: sql.ErrNoRows}
)

// NewError builds an Error for drivers that do not speak SQLSTATE (memory).
func NewError(code Code, constraint string, err error) *Error {
	return &Error{Code: code, Constraint: constraint, Err: err}
}

// Wrap converts driver errors into *Error. nil stays nil.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, sql.ErrNoRows) {
		return &Error{Code: CodeNotFound, Err: err}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return &Error{Code: CodeUniqueViolation, Constraint: pqErr.Constraint, Err: err}
		case "23503":
			return &Error{Code: CodeForeignKeyViolation, Constraint: pqErr.Constraint, Err: err}
		case "42P01":
			return &Error{Code: CodeUndefinedTable, Err: err}
		}
	}
	return &Error{Code: CodeUnknown, Err: err}
}

// CodeOf reports the classification of err, or "" when err is not a store error.
func CodeOf(err error) Code {
	var se *Error
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

func IsNotFound(err error) bool { return CodeOf(err) == CodeNotFound }
