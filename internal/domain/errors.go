package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPostNotFound           = errors.New("post not found")
	ErrInvalidContent         = errors.New("invalid post content")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrUnknownPlatform        = errors.New("unknown platform")
	ErrUnknownStatus          = errors.New("unknown post status")
)

// TransitionError reports a lifecycle event attempted outside its guard.
type TransitionError struct {
	From   Status
	Event  string
	Reason string
}

func (e *TransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot %s a %s post: %s", e.Event, e.From, e.Reason)
	}
	return fmt.Sprintf("cannot %s a %s post", e.Event, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidStateTransition
}
