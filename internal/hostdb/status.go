package hostdb

import (
	"fmt"
	"time"

	"github.com/huangsam/chartwire/internal/query"
	"github.com/huangsam/chartwire/schema"
)

// migrationsTable is maintained by golang-migrate.
const migrationsTable = "schema_migrations"

// GetStatus returns status information about the SQL host.
func (h *SQLHost) GetStatus() (schema.HostStatus, error) {
	status := schema.HostStatus{
		Backend:         string(h.backend),
		Connected:       h.db != nil,
		TableSizes:      map[string]int64{},
		NotifierBackend: string(h.notifierKind),
	}
	if h.db == nil {
		return status, nil
	}
	if err := h.db.Ping(); err != nil {
		status.Connected = false
		return status, nil
	}
	if h.notifier != nil {
		status.ActiveWatches = h.notifier.ActiveWatches()
	}

	// Schema version is only known once migrations have run
	versionQuery := fmt.Sprintf("SELECT version FROM %s LIMIT 1", query.QuoteIdent(migrationsTable, h.backend))
	var version int64
	if err := h.db.QueryRow(versionQuery).Scan(&version); err == nil && version > 0 {
		status.SchemaVersion = uint(version)
	}

	for _, table := range []string{proceduresTable, revisionsTable} {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", query.QuoteIdent(table, h.backend))
		if err := h.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to count rows of %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.Procedures = int(status.TableSizes[proceduresTable])
	status.TrackedRecords = int(status.TableSizes[revisionsTable])

	if status.TrackedRecords > 0 {
		lastQuery := fmt.Sprintf("SELECT MAX(updated_at) FROM %s", query.QuoteIdent(revisionsTable, h.backend))
		var lastTs int64
		if err := h.db.QueryRow(lastQuery).Scan(&lastTs); err != nil {
			return status, fmt.Errorf("failed to get last revision time: %w", err)
		}
		status.LastRevisionAt = time.Unix(lastTs, 0)
	}
	return status, nil
}

// PrintHostStatus prints host status information.
func PrintHostStatus(status schema.HostStatus) {
	fmt.Printf("Host Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	if status.SchemaVersion > 0 {
		fmt.Printf("Schema Version: %d\n", status.SchemaVersion)
	}
	fmt.Printf("Procedures: %d\n", status.Procedures)
	fmt.Printf("Tracked Records: %d\n", status.TrackedRecords)
	if status.TrackedRecords > 0 {
		fmt.Printf("Last Revision: %s\n", status.LastRevisionAt.Format("2006-01-02 15:04:05"))
	}
	if status.NotifierBackend != "" {
		fmt.Printf("Notifier: %s\n", status.NotifierBackend)
	}
	fmt.Printf("Active Watches: %d\n", status.ActiveWatches)
	if len(status.TableSizes) > 0 {
		fmt.Println("Table Sizes:")
		for table, size := range status.TableSizes {
			fmt.Printf("  %s: %d rows\n", table, size)
		}
	}
}
