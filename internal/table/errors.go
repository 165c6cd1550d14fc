package table

import "errors"

// Errors returned by table construction and column lookups.
var (
	// ErrColumnNotFound is returned when a column name is not part of the table.
	ErrColumnNotFound = errors.New("column not found")

	// ErrLengthMismatch is returned when columns of a new table differ in length.
	ErrLengthMismatch = errors.New("column length mismatch")

	// ErrDuplicateColumn is returned when two columns share a name.
	ErrDuplicateColumn = errors.New("duplicate column")
)
