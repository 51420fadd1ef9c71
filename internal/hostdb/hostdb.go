// Package hostdb is the SQL-backed host data source and its change notifiers.
package hostdb

import (
	"sync"
	"time"

	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/schema"
)

// Host table names.
const (
	proceduresTable = "host_procedures"
	revisionsTable  = "host_revisions"
)

// Options configures a host data source.
type Options struct {
	Backend       schema.DatabaseBackend
	ConnStr       string
	Workers       int
	QueryTimeout  time.Duration
	Notifier      schema.NotifierKind
	PollInterval  time.Duration
	RedisAddr     string
	RedisPassword string // Please use env var as this is plaintext
	RedisDB       int
}

// OptionsFromConfig extracts host options from the validated config.
func OptionsFromConfig(cfg *contract.Config) Options {
	return Options{
		Backend:       cfg.HostBackend,
		ConnStr:       cfg.HostConnect,
		Workers:       cfg.Workers,
		QueryTimeout:  cfg.QueryTimeout,
		Notifier:      cfg.Notifier,
		PollInterval:  cfg.PollInterval,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
	}
}

// Host is a closable host data source that reports its status.
type Host interface {
	contract.HostDataSource
	GetStatus() (schema.HostStatus, error)
	Close() error
}

// HostStoreManager owns the process-wide host.
type HostStoreManager struct {
	sync.RWMutex // Protects the host pointer during initialization
	host         Host
}

var _ contract.HostManager = &HostStoreManager{} // Compile-time check

// GetHost returns the host data source, or nil before InitHost.
func (mgr *HostStoreManager) GetHost() contract.HostDataSource {
	mgr.RLock()
	defer mgr.RUnlock()
	if mgr.host == nil {
		return nil
	}
	return mgr.host
}

// GetStatus returns the status of the host data source.
func (mgr *HostStoreManager) GetStatus() (schema.HostStatus, error) {
	mgr.RLock()
	defer mgr.RUnlock()
	if mgr.host == nil {
		return schema.HostStatus{}, nil
	}
	return mgr.host.GetStatus()
}
