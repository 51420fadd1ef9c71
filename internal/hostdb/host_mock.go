package hostdb

import (
	"context"

	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/schema"
	"github.com/stretchr/testify/mock"
)

// MockHostManager is a mock implementation of HostManager for testing.
type MockHostManager struct {
	mock.Mock
}

var _ contract.HostManager = &MockHostManager{} // Compile-time check

// GetHost implements the HostManager interface.
func (m *MockHostManager) GetHost() contract.HostDataSource {
	ret := m.Called()
	host, _ := ret.Get(0).(contract.HostDataSource)
	return host
}

// GetStatus implements the HostManager interface.
func (m *MockHostManager) GetStatus() (schema.HostStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HostStatus), args.Error(1)
}

// MockHostDataSource is a mock implementation of HostDataSource and ActionHost for testing.
type MockHostDataSource struct {
	mock.Mock
}

var (
	_ contract.HostDataSource = &MockHostDataSource{} // Compile-time check
	_ contract.ActionHost     = &MockHostDataSource{} // Compile-time check
)

// Get implements the HostDataSource interface.
func (m *MockHostDataSource) Get(ctx context.Context, req schema.RetrieveRequest) ([]contract.RawRecord, error) {
	args := m.Called(ctx, req)
	records, _ := args.Get(0).([]contract.RawRecord)
	return records, args.Error(1)
}

// Subscribe implements the HostDataSource interface.
func (m *MockHostDataSource) Subscribe(recordID string, callback func()) (schema.SubscriptionHandle, error) {
	args := m.Called(recordID, callback)
	return args.Get(0).(schema.SubscriptionHandle), args.Error(1)
}

// Unsubscribe implements the HostDataSource interface.
func (m *MockHostDataSource) Unsubscribe(handle schema.SubscriptionHandle) error {
	args := m.Called(handle)
	return args.Error(0)
}

// ExecuteAction implements the ActionHost interface.
func (m *MockHostDataSource) ExecuteAction(ctx context.Context, name string, recordID string) error {
	args := m.Called(ctx, name, recordID)
	return args.Error(0)
}

// OpenPage implements the ActionHost interface.
func (m *MockHostDataSource) OpenPage(ctx context.Context, page string, recordID string) error {
	args := m.Called(ctx, page, recordID)
	return args.Error(0)
}
