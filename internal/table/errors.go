package table

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned by Load when the input has no header line.
	ErrEmptyInput = errors.New("empty input: no header line")

	// ErrIndexOutOfRange is wrapped by every row or column index failure.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrLastColumn is returned when deleting the only remaining column.
	ErrLastColumn = errors.New("at least one column must remain")
)

func rowRangeError(idx, n int) error {
	return fmt.Errorf("%w: row %d (table has %d rows)", ErrIndexOutOfRange, idx, n)
}

func colRangeError(idx, n int) error {
	return fmt.Errorf("%w: column %d (table has %d columns)", ErrIndexOutOfRange, idx, n)
}
