package db

import (
	"errors"
	"fmt"
)

// Sentinel errors for database operations.
var (
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
)

// Op identifies the failed database operation.
type Op string

// Database operations for error reporting.
const (
	OpHSet        Op = "hset"
	OpDel         Op = "del"
	OpCreateIndex Op = "ft.create"
	OpDropIndex   Op = "ft.dropindex"
	OpIndexInfo   Op = "ft.info"
	OpSearch      Op = "ft.search"
)

// Error wraps a backend error with the operation that produced it.
type Error struct {
	Op  Op
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("db %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
