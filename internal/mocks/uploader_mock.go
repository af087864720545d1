package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockUploader is a mock implementation of the s3.Uploader interface
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) UploadFile(ctx context.Context, bucketName, objectName, filePath, contentType string) error {
	args := m.Called(ctx, bucketName, objectName, filePath, contentType)
	return args.Error(0)
}
