package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockExtractor is a mock implementation of the extract.Extractor interface
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, path string) ([]byte, error) {
	args := m.Called(ctx, path)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}
