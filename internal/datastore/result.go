package datastore

// Result is the outcome of a datastore operation. Value always holds the
// operation's neutral value (nil, empty slice or empty map) unless Status is
// StatusOK, so callers that only want data can ignore Status entirely.
type Result[T any] struct {
	Value  T
	Status Status
	Err    error
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool {
	return r.Status == StatusOK
}

// Degraded reports whether the result reflects a backend problem rather than
// a legitimate absence of data.
func (r Result[T]) Degraded() bool {
	switch r.Status {
	case StatusUnavailable, StatusQueryError, StatusTransportError:
		return true
	default:
		return false
	}
}

func ok[T any](v T) Result[T] {
	return Result[T]{Value: v, Status: StatusOK}
}

func failed[T any](neutral T, status Status, err error) Result[T] {
	return Result[T]{Value: neutral, Status: status, Err: err}
}
