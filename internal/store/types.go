package store

import "errors"

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// InsertResult is the outcome of a single booking insert attempt.
type InsertResult int

const (
	// InsertFailed means the storage engine failed for a reason other than
	// the (date, slot) constraint. The accompanying error says why.
	InsertFailed InsertResult = iota
	// InsertCreated means the booking was stored and its ID assigned.
	InsertCreated
	// InsertConflict means another booking already holds the (date, slot).
	InsertConflict
)

func (r InsertResult) String() string {
	switch r {
	case InsertCreated:
		return "created"
	case InsertConflict:
		return "conflict"
	}
	return "failed"
}
