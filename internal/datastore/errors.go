package datastore

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrUnavailable = errors.New("datastore unavailable")
	ErrNotFound    = errors.New("record not found")
)

// Status classifies the outcome of a datastore operation.
type Status int

const (
	StatusOK Status = iota
	StatusNotFound
	StatusUnavailable
	StatusQueryError
	StatusTransportError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not_found"
	case StatusUnavailable:
		return "unavailable"
	case StatusQueryError:
		return "query_error"
	case StatusTransportError:
		return "transport_error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Classify maps an error returned by a Backend to a Status.
// A nil error is StatusOK.
func Classify(err error) Status {
	if err == nil {
		return StatusOK
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows) {
		return StatusNotFound
	}
	if errors.Is(err, ErrUnavailable) {
		return StatusUnavailable
	}
	if errors.Is(err, ErrMultipleRows) {
		return StatusQueryError
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return StatusQueryError
	}
	return StatusTransportError
}

// panicError carries a value recovered from a misbehaving backend call.
type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("backend panic: %v", e.value)
}
