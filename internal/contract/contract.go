// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/huangsam/chartwire/schema"
)

// RawRecord is an opaque host record. It is owned by the host and never mutated here.
type RawRecord interface {
	// ID returns the stable record identifier.
	ID() string

	// Get returns the value of a named attribute, or nil when it is absent.
	Get(attr string) any
}

// HostDataSource defines the record retrieval and subscription API of the host.
// This allows the pipeline to be tested with a fake host.
type HostDataSource interface {
	// Get runs a single retrieval: a query expression or a named procedure.
	Get(ctx context.Context, req schema.RetrieveRequest) ([]RawRecord, error)

	// Subscribe registers a callback fired whenever the record changes.
	Subscribe(recordID string, callback func()) (schema.SubscriptionHandle, error)

	// Unsubscribe tears down a subscription created by Subscribe.
	Unsubscribe(handle schema.SubscriptionHandle) error
}

// ActionHost is implemented by hosts that can run click actions.
type ActionHost interface {
	// ExecuteAction runs a named procedure against a record and discards its output.
	ExecuteAction(ctx context.Context, name string, recordID string) error

	// OpenPage asks the host to show a page for a record.
	OpenPage(ctx context.Context, page string, recordID string) error
}

// ChangeNotifier delivers record change signals to a host.
type ChangeNotifier interface {
	Watch(recordID string, callback func()) (schema.SubscriptionHandle, error)
	Unwatch(handle schema.SubscriptionHandle) error
	ActiveWatches() int
	Close() error
}

// ChartAdapter renders chart data into a named container.
type ChartAdapter interface {
	Draw(target string, data schema.ChartDataSet, layout schema.Layout, render schema.RenderOptions) error
	Resize(target string) error
	Destroy(target string) error
}

// Alerter is implemented by adapters that can replace a chart with an inline message.
type Alerter interface {
	Alert(target string, message string) error
}

// Notifier surfaces transient, user-visible errors.
type Notifier interface {
	Error(message string)
}

// HostManager owns the process-wide host data source.
type HostManager interface {
	GetHost() HostDataSource
	GetStatus() (schema.HostStatus, error)
}
