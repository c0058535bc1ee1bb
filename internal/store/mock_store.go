package store

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store using testify/mock.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) RecordUpload(ctx context.Context, u Upload) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
