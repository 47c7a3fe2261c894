package csvimport

import (
	"fmt"
	"sort"
)

// Row error codes
const (
	CodeRequired     = "REQUIRED"
	CodeInvalidType  = "INVALID_TYPE"
	CodeInvalidValue = "INVALID_VALUE"
	CodeTooLong      = "TOO_LONG"
	CodeOutOfRange   = "OUT_OF_RANGE"
	CodeDuplicate    = "DUPLICATE"
	CodeNotFound     = "NOT_FOUND"
	CodeMalformed    = "MALFORMED_ROW"
)

// DefaultMaxErrors caps how many row errors are kept for the response
const DefaultMaxErrors = 100

// RowError is a problem with one cell, or with a whole row when Column is empty
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column %q: %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// Errors collects row errors up to a limit while still counting the rest
type Errors struct {
	items []RowError
	max   int
	total int
	rows  map[int]struct{}
}

// NewErrors creates a collection keeping at most max errors
func NewErrors(max int) *Errors {
	if max <= 0 {
		max = DefaultMaxErrors
	}
	return &Errors{max: max, rows: make(map[int]struct{})}
}

// Add records an error
func (e *Errors) Add(err RowError) {
	e.total++
	e.rows[err.Row] = struct{}{}
	if len(e.items) < e.max {
		e.items = append(e.items, err)
	}
}

// Addf records an error built from its parts
func (e *Errors) Addf(row int, column, code, value, format string, args ...any) {
	e.Add(RowError{Row: row, Column: column, Code: code, Value: value, Message: fmt.Sprintf(format, args...)})
}

// List returns the kept errors ordered by row
func (e *Errors) List() []RowError {
	out := make([]RowError, len(e.items))
	copy(out, e.items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Row < out[j].Row })
	return out
}

// Total counts every error added, kept or not
func (e *Errors) Total() int { return e.total }

// Rows counts distinct rows with at least one error
func (e *Errors) Rows() int { return len(e.rows) }

// Truncated reports whether errors were dropped
func (e *Errors) Truncated() bool { return e.total > len(e.items) }

// Any reports whether anything was added
func (e *Errors) Any() bool { return e.total > 0 }

// HasRow reports whether the row has an error
func (e *Errors) HasRow(row int) bool {
	_, ok := e.rows[row]
	return ok
}
