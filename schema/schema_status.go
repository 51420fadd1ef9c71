package schema

import "time"

// HostStatus represents the status of the host data source.
type HostStatus struct {
	Backend         string           `json:"backend"`
	Connected       bool             `json:"connected"`
	SchemaVersion   uint             `json:"schema_version"`
	Procedures      int              `json:"procedures"`
	TrackedRecords  int              `json:"tracked_records"`
	LastRevisionAt  time.Time        `json:"last_revision_at"`
	TableSizes      map[string]int64 `json:"table_sizes"`
	ActiveWatches   int              `json:"active_watches"`
	NotifierBackend string           `json:"notifier_backend"`
}
