package storage

import "context"

// MockSaver is a mock implementation of the Saver interface for testing.
type MockSaver struct {
	SaveFunc func(ctx context.Context, req SaveRequest) (*SaveResult, error)
}

// Ensure MockSaver implements the Saver interface.
var _ Saver = (*MockSaver)(nil)

// Save calls the mock function or returns a fixed result.
func (m *MockSaver) Save(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, req)
	}
	return &SaveResult{
		SavedPath: "/tmp/mock/image.jpg",
		Filename:  "image.jpg",
		Directory: "/tmp/mock",
		Size:      1024,
	}, nil
}
