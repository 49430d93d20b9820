package bfl

import "context"

// MockClient is a mock implementation of the Client interface for testing.
type MockClient struct {
	SubmitFunc          func(ctx context.Context, endpoint string, payload map[string]interface{}) (string, error)
	FetchStatusFunc     func(ctx context.Context, id string) (*TaskResult, error)
	AwaitCompletionFunc func(ctx context.Context, id string, opts AwaitOptions) (*TaskResult, error)
}

// Ensure MockClient implements the Client interface.
var _ Client = (*MockClient)(nil)

// Submit calls the mock function or returns a fixed task id.
func (m *MockClient) Submit(ctx context.Context, endpoint string, payload map[string]interface{}) (string, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, endpoint, payload)
	}
	return "mock-task-id", nil
}

// FetchStatus calls the mock function or reports the task as Ready.
func (m *MockClient) FetchStatus(ctx context.Context, id string) (*TaskResult, error) {
	if m.FetchStatusFunc != nil {
		return m.FetchStatusFunc(ctx, id)
	}
	return &TaskResult{ID: id, Status: StatusReady}, nil
}

// AwaitCompletion calls the mock function or reports the task as Ready.
func (m *MockClient) AwaitCompletion(ctx context.Context, id string, opts AwaitOptions) (*TaskResult, error) {
	if m.AwaitCompletionFunc != nil {
		return m.AwaitCompletionFunc(ctx, id, opts)
	}
	return &TaskResult{ID: id, Status: StatusReady}, nil
}
