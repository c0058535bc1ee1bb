package storage

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of Storage using testify/mock.
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (ObjectInfo, error) {
	args := m.Called(ctx, key, r, opt)
	return args.Get(0).(ObjectInfo), args.Error(1)
}
