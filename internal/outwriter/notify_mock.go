package outwriter

import (
	"github.com/huangsam/chartwire/internal/contract"
	"github.com/stretchr/testify/mock"
)

// MockNotifier is a mock implementation of Notifier for testing.
type MockNotifier struct {
	mock.Mock
}

var _ contract.Notifier = &MockNotifier{} // Compile-time check

// Error implements the Notifier interface.
func (m *MockNotifier) Error(message string) {
	m.Called(message)
}
