package bfl

import (
	"context"
	"time"
)

// TaskStatus is the lifecycle state of a generation task as reported by the
// BFL API.
type TaskStatus string

const (
	StatusPending          TaskStatus = "Pending"
	StatusReady            TaskStatus = "Ready"
	StatusError            TaskStatus = "Error"
	StatusContentModerated TaskStatus = "Content Moderated"
	StatusRequestModerated TaskStatus = "Request Moderated"
)

// Terminal reports whether no further polling should occur for this status.
func (s TaskStatus) Terminal() bool {
	switch s {
	case StatusReady, StatusError, StatusContentModerated, StatusRequestModerated:
		return true
	}
	return false
}

// SubmitResponse is the body returned when a generation request is accepted.
type SubmitResponse struct {
	ID         string `json:"id"`
	PollingURL string `json:"polling_url"`
}

// TaskResult is the body of a /v1/get_result response.
type TaskResult struct {
	ID       string      `json:"id"`
	Status   TaskStatus  `json:"status"`
	Progress *float64    `json:"progress,omitempty"`
	Result   interface{} `json:"result,omitempty"`
	Details  interface{} `json:"details,omitempty"`
}

// Default timing for AwaitCompletion.
const (
	DefaultMaxWait      = 5 * time.Minute
	DefaultPollInterval = 2 * time.Second
)

// AwaitOptions controls the polling loop in AwaitCompletion. Zero values for
// MaxWait and PollInterval take the package defaults. OnProgress, when set, is
// invoked with every fetched status (terminal ones included) before
// terminality is evaluated.
type AwaitOptions struct {
	MaxWait      time.Duration
	PollInterval time.Duration
	OnProgress   func(*TaskResult)
}

// Client is the port used by the tool dispatcher to reach the BFL API.
type Client interface {
	Submit(ctx context.Context, endpoint string, payload map[string]interface{}) (string, error)
	FetchStatus(ctx context.Context, id string) (*TaskResult, error)
	AwaitCompletion(ctx context.Context, id string, opts AwaitOptions) (*TaskResult, error)
}
