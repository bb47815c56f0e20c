package trend

import (
	"errors"
	"fmt"
)

// Common errors surfaced by the trend engine and its callers.
var (
	// ErrInvalidRange means a query's start date is after its end date.
	ErrInvalidRange = errors.New("start date is after end date")

	// ErrStorageUnavailable means the database could not be reached. API
	// handlers translate it into a degraded empty response rather than a
	// crash.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFound means the requested entity does not exist.
	ErrNotFound = errors.New("not found")
)

// UnknownTopicError means a topic string did not resolve against the fixed
// label set, even after partial matching. Suggestion carries the closest
// label, when one exists.
type UnknownTopicError struct {
	Topic      string
	Suggestion string
}

func (e *UnknownTopicError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown topic %q (closest match: %q)", e.Topic, e.Suggestion)
	}

	return fmt.Sprintf("unknown topic %q", e.Topic)
}
