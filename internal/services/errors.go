package services

import (
	"errors"
	"fmt"

	"github.com/yungbote/trit-recommender/internal/data/db"
)

// ErrUpstreamUnavailable marks failures of the relational, vector or
// counter store. Requests that hit it end with an ERROR result.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

type UpstreamError struct {
	Store string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Store, e.Err)
}

func (e *UpstreamError) Unwrap() []error {
	return []error{ErrUpstreamUnavailable, e.Err}
}

func upstream(store string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Store: store, Err: err}
}

// relational wraps a repository error, flagging connectivity failures as
// upstream outages.
func relational(op string, err error) error {
	if err == nil {
		return nil
	}
	if db.IsUnavailable(err) {
		return upstream("postgres", fmt.Errorf("%s: %w", op, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}
