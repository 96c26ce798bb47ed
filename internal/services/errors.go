package services

import "errors"

// Core errors are deterministic validation failures on malformed input. The
// pure scoring and scheduling functions perform no I/O, so none of these are
// retryable. Handlers map them to 4xx responses; EmptyHistory is additionally
// the documented cold-start signal and never reaches callers of the
// orchestrator as an error.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrEmptyHistory    = errors.New("empty play history")
	ErrNotFound        = errors.New("not found")
)
