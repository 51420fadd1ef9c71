package render

import (
	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/schema"
	"github.com/stretchr/testify/mock"
)

// MockChartAdapter is a mock implementation of ChartAdapter and Alerter for testing.
type MockChartAdapter struct {
	mock.Mock
}

var (
	_ contract.ChartAdapter = &MockChartAdapter{} // Compile-time check
	_ contract.Alerter      = &MockChartAdapter{} // Compile-time check
)

// Draw implements the ChartAdapter interface.
func (m *MockChartAdapter) Draw(target string, data schema.ChartDataSet, layout schema.Layout, render schema.RenderOptions) error {
	args := m.Called(target, data, layout, render)
	return args.Error(0)
}

// Resize implements the ChartAdapter interface.
func (m *MockChartAdapter) Resize(target string) error {
	args := m.Called(target)
	return args.Error(0)
}

// Destroy implements the ChartAdapter interface.
func (m *MockChartAdapter) Destroy(target string) error {
	args := m.Called(target)
	return args.Error(0)
}

// Alert implements the Alerter interface.
func (m *MockChartAdapter) Alert(target string, message string) error {
	args := m.Called(target, message)
	return args.Error(0)
}
