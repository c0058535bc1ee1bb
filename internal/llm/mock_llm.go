package llm

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGenerator is a mock implementation of Generator using testify/mock.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockGenerator) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockGenerator) Model() string {
	return "mock-model"
}
