package usecase

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

var (
	ErrAccessDenied  = errors.New("access denied")
	ErrNotDraft      = errors.New("only draft posts can be regenerated")
	ErrNotConfirmed  = errors.New("post must be confirmed before publishing")
	ErrEmptyTopic    = errors.New("topic cannot be empty")
	ErrPublishFailed = errors.New("all publications failed")
	ErrNoPlatforms   = errors.New("no platforms to publish to")
)

// Result is embedded by every use case result.
type Result struct {
	Success bool
	Err     error
}

func ok() Result {
	return Result{Success: true}
}

func failed(err error) Result {
	return Result{Err: err}
}

// ErrorMessage is the short text shown to users, empty on success.
func (r Result) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// recoverAs turns a panic below a use case into a failed result.
func recoverAs(log *logrus.Entry, op string, fail func(error)) {
	if r := recover(); r != nil {
		err := fmt.Errorf("unexpected error during %s: %v", op, r)
		log.WithField("panic", r).Errorf("Recovered from panic in %s", op)
		fail(err)
	}
}
