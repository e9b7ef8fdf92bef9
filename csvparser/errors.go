package csvparser

import "errors"

var (
	ErrNoHeader       = errors.New("csv file has no header")
	ErrColumnMismatch = errors.New("csv columns do not match table")
)
