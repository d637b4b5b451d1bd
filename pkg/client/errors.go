package client

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidQuery is returned for an empty or all-whitespace query. No
	// request is sent.
	ErrInvalidQuery = errors.New("invalid search query")

	// ErrNoResults reports a successful search that matched nothing. It is
	// informational and always accompanies an empty result list.
	ErrNoResults = errors.New("no results")

	// ErrSearchUnavailable matches every *UnavailableError.
	ErrSearchUnavailable = errors.New("search unavailable")
)

// UnavailableError describes a transport or HTTP failure talking to the
// search provider.
type UnavailableError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("search unavailable: HTTP %d: %s", e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("search unavailable: %s: %v", e.Message, e.Err)
	}
	return "search unavailable: " + e.Message
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool {
	return target == ErrSearchUnavailable
}

// NormalizeQuery trims the query and rejects it when nothing is left.
func NormalizeQuery(query string) (string, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", ErrInvalidQuery
	}
	return q, nil
}
