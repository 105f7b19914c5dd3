package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockChecker is a mock implementation of access.Checker interface.
type MockChecker struct {
	mock.Mock
}

func (m *MockChecker) Check(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)

	return args.Bool(0), args.Error(1)
}
