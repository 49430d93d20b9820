package bfl

import (
	"fmt"
	"time"
)

// ValidationError indicates a missing or malformed call-time argument. It is
// returned before any network activity takes place.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// RemoteError is a non-success HTTP response from the BFL API.
type RemoteError struct {
	StatusCode int
	Body       string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// NetworkError is a transport-level failure (connection refused, DNS, etc.).
// Unlike RemoteError it carries no HTTP status and is presumptively retryable
// by the caller; this client performs no automatic retry.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// TaskFailedError indicates the task reached a terminal status other than
// Ready.
type TaskFailedError struct {
	Status  TaskStatus
	Details interface{}
}

func (e *TaskFailedError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("task failed with status %q: %v", e.Status, e.Details)
	}
	return fmt.Sprintf("task failed with status %q", e.Status)
}

// TimeoutError indicates the wall-clock ceiling elapsed before the task
// reached a terminal status.
type TimeoutError struct {
	Waited time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %v waiting for task completion", e.Waited)
}
