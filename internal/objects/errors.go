package objects

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned before any remote call when a request
	// cannot be served, such as a missing bucket or a malformed pattern.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned by DeleteObjects when nothing matched.
	ErrNotFound = errors.New("no matching objects")

	// ErrNoResponse is returned when a store reports neither a result nor an error.
	ErrNoResponse = errors.New("store returned no response")
)

// NotFoundError names the bucket, prefix and pattern that matched nothing.
type NotFoundError struct {
	Bucket  string
	Prefix  string
	Pattern string
}

func (e *NotFoundError) Error() string {
	pattern := e.Pattern
	if pattern == "" {
		pattern = "<none>"
	}
	return fmt.Sprintf("no pattern '%s' in prefix '%s/%s'", pattern, e.Bucket, e.Prefix)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
