package search

import (
	"errors"
	"fmt"
	"time"

	"github.com/spigell/jobscout/internal/jobs"
)

// Kind classifies the outcome of a provider attempt.
type Kind string

const (
	KindRateLimited   Kind = "rate_limited"
	KindUnauthorized  Kind = "unauthorized"
	KindTransient     Kind = "transient"
	KindUnknown       Kind = "unknown"
	KindNotConfigured Kind = "not_configured"
	// KindExhausted is the terminal failure when no provider produced a usable result.
	KindExhausted Kind = "exhausted"

	outcomeSuccess Kind = "success"
	outcomeEmpty   Kind = "empty"
)

// ProviderError carries the classified kind of an adapter failure.
type ProviderError struct {
	Provider string
	Kind     Kind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Failure is the error branch of a Result.
type Failure struct {
	Kind     Kind      `json:"kind"`
	Message  string    `json:"message"`
	Guidance *Guidance `json:"guidance,omitempty"`
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

// Attempt records what happened with one provider during a search.
type Attempt struct {
	Provider string        `json:"provider"`
	Outcome  Kind          `json:"outcome"`
	Jobs     int           `json:"jobs"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Result is either a success (Failure is nil) carrying jobs and the provider that
// produced them, or a failure with no jobs.
type Result struct {
	Jobs     []jobs.Posting `json:"jobs,omitempty"`
	Provider string         `json:"provider,omitempty"`
	Failure  *Failure       `json:"failure,omitempty"`
	Attempts []Attempt      `json:"attempts"`
}

func (r Result) OK() bool { return r.Failure == nil }

// Err returns the failure as an error, or nil on success.
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

// AsFailure extracts a Failure from err.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	ok := errors.As(err, &f)
	return f, ok
}
