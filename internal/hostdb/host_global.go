package hostdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/internal/hostfile"
	"github.com/huangsam/chartwire/internal/query"
	"github.com/huangsam/chartwire/schema"
)

// Global Manager instance for main logic.
var (
	Manager   = &HostStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// NewHost creates the host data source for the configured backend.
func NewHost(opts Options) (Host, error) {
	if opts.Backend == schema.FileBackend {
		fh, err := hostfile.NewFileHost(opts.ConnStr, opts.Notifier != schema.NoneNotifier)
		if err != nil {
			return nil, err
		}
		return fh, nil
	}
	sh, err := NewSQLHost(opts)
	if err != nil {
		return nil, err
	}
	return sh, nil
}

// InitHost initializes the global host data source.
func InitHost(opts Options) error {
	var initErr error

	initOnce.Do(func() {
		// This function body runs exactly once, even with concurrent calls.
		host, err := NewHost(opts)
		if err != nil {
			initErr = fmt.Errorf("failed to initialize %s host: %w", opts.Backend, err)
			return
		}

		Manager.Lock()
		Manager.host = host
		Manager.Unlock()
	})

	// After once.Do, initErr will contain any error from the initialization block.
	return initErr
}

// CloseHost should be called on application shutdown.
func CloseHost() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.host != nil {
			if err := Manager.host.Close(); err != nil {
				contract.LogWarn("Error closing host", err)
			}
		}
	})
}

// ErrHostNotInitialized is returned by manager operations before InitHost.
var ErrHostNotInitialized = errors.New("host is not initialized")

// Touch marks a record as changed so every watcher of it redraws.
// SQL hosts return the new revision; the file host has no revisions and returns 0.
func (mgr *HostStoreManager) Touch(ctx context.Context, recordID string) (int64, error) {
	mgr.RLock()
	defer mgr.RUnlock()
	switch h := mgr.host.(type) {
	case nil:
		return 0, ErrHostNotInitialized
	case *SQLHost:
		return h.Touch(ctx, recordID)
	case *hostfile.FileHost:
		h.Touch(recordID)
		return 0, nil
	default:
		return 0, fmt.Errorf("host %T does not support touch", h)
	}
}

// Seed installs the demo sales data on a SQL host.
func (mgr *HostStoreManager) Seed(ctx context.Context) error {
	mgr.RLock()
	defer mgr.RUnlock()
	switch h := mgr.host.(type) {
	case nil:
		return ErrHostNotInitialized
	case *SQLHost:
		return SeedDemo(ctx, h)
	default:
		return fmt.Errorf("host %T cannot be seeded; edit the YAML file instead", h)
	}
}

// ClearHost removes the host tables for the specified backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the host tables.
// The file backend is never modified.
func ClearHost(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		dbFilePath := connStr
		if dbFilePath == "" {
			dbFilePath = contract.GetHostDBFilePath()
		}
		// Remove the file; ignore if it doesn't exist
		if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
		}
		return nil

	case schema.MySQLBackend, schema.PostgreSQLBackend:
		db, err := OpenDB(backend, connStr)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		for _, table := range []string{revisionsTable, proceduresTable} {
			stmt := fmt.Sprintf("DROP TABLE IF EXISTS %s", query.QuoteIdent(table, backend))
			if _, err := db.Exec(stmt); err != nil {
				return fmt.Errorf("failed to drop table %s: %w", table, err)
			}
		}
		return nil

	case schema.FileBackend:
		return fmt.Errorf("the file backend is read-only and cannot be cleared")

	default:
		return fmt.Errorf("unsupported host backend for clearing: %s", backend)
	}
}
