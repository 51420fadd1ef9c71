// Package hostfile is a read-only host data source backed by a YAML document.
// Changes to the document are picked up with fsnotify and reported to subscribers.
package hostfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/internal/logging"
	"github.com/huangsam/chartwire/internal/query"
	"github.com/huangsam/chartwire/schema"
	"gopkg.in/yaml.v3"
)

// ErrProcedureNotFound is returned when a named procedure is not defined in the document.
var ErrProcedureNotFound = errors.New("procedure not found")

// Procedure selects the records of an entity whose Reference attribute equals
// the first parameter, ordered by Sort.
type Procedure struct {
	Entity    string `yaml:"entity"`
	Reference string `yaml:"reference"`
	Sort      string `yaml:"sort"`
	Desc      bool   `yaml:"desc"`
}

// Document is the on-disk layout of a host file.
type Document struct {
	Entities   map[string][]map[string]any `yaml:"entities"`
	Procedures map[string]Procedure        `yaml:"procedures"`
}

// Action is one click action executed against the host.
type Action struct {
	Name     string
	RecordID string
	At       time.Time
}

type subscription struct {
	recordID string
	callback func()
}

// FileHost serves records from a YAML document.
type FileHost struct {
	path string

	mu         sync.RWMutex
	entities   map[string][]contract.RawRecord
	procedures map[string]Procedure
	loadedAt   time.Time
	actions    []Action

	subMu sync.Mutex
	subs  map[schema.SubscriptionHandle]subscription

	watcher *fsnotify.Watcher
	done    chan struct{}
}

var (
	_ contract.HostDataSource = &FileHost{} // Compile-time check
	_ contract.ActionHost     = &FileHost{} // Compile-time check
)

// NewFileHost loads the document at path. When watch is set the file is
// reloaded on change and every subscriber is notified.
func NewFileHost(path string, watch bool) (*FileHost, error) {
	if path == "" {
		return nil, fmt.Errorf("a host file path is required for the file backend")
	}
	h := &FileHost{
		path: path,
		subs: make(map[schema.SubscriptionHandle]subscription),
	}
	if err := h.Reload(); err != nil {
		return nil, err
	}
	if watch {
		if err := h.startWatcher(); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Reload reads the document from disk and replaces the served records.
func (h *FileHost) Reload() error {
	data, err := os.ReadFile(h.path)
	if err != nil {
		return fmt.Errorf("failed to read host file %s: %w", h.path, err)
	}
	doc, err := Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse host file %s: %w", h.path, err)
	}

	entities := make(map[string][]contract.RawRecord, len(doc.Entities))
	for name, rows := range doc.Entities {
		records := make([]contract.RawRecord, 0, len(rows))
		for i, row := range rows {
			records = append(records, toRecord(row, i))
		}
		entities[schema.SnakeCase(name)] = records
	}

	h.mu.Lock()
	h.entities = entities
	h.procedures = doc.Procedures
	h.loadedAt = time.Now()
	h.mu.Unlock()
	return nil
}

// Parse decodes a host document.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, err
	}
	for name, p := range doc.Procedures {
		if p.Entity == "" {
			return Document{}, fmt.Errorf("procedure %s has no entity", name)
		}
	}
	return doc, nil
}

// toRecord stores attributes under their storage names so lookups match the SQL hosts.
func toRecord(row map[string]any, index int) schema.MapRecord {
	attrs := make(map[string]any, len(row))
	for k, v := range row {
		attrs[schema.SnakeCase(k)] = v
	}
	id := schema.FormatX(attrs["id"])
	if id == "" {
		id = fmt.Sprintf("%d", index)
	}
	return schema.NewMapRecord(id, attrs)
}

// Get evaluates a query expression or a procedure against the loaded document.
func (h *FileHost) Get(ctx context.Context, req schema.RetrieveRequest) ([]contract.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if req.ActionName != "" {
		p, ok := h.procedures[req.ActionName]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProcedureNotFound, req.ActionName)
		}
		owner := ""
		if len(req.Params) > 0 {
			owner = req.Params[0]
		}
		var out []contract.RawRecord
		for _, r := range h.entities[schema.SnakeCase(p.Entity)] {
			if p.Reference == "" || schema.FormatX(r.Get(p.Reference)) == owner {
				out = append(out, r)
			}
		}
		if p.Sort != "" {
			dir := schema.SortAsc
			if p.Desc {
				dir = schema.SortDesc
			}
			sortRecords(out, []schema.SortSpec{{Attribute: p.Sort, Direction: dir}})
		}
		return nonNil(out), nil
	}

	q, err := query.Parse(req.QueryExpression)
	if err != nil {
		return nil, err
	}
	records, ok := h.entities[q.Table()]
	if !ok {
		return nil, fmt.Errorf("unknown entity %s", q.Entity)
	}
	var out []contract.RawRecord
	for _, r := range records {
		if q.Match(r.Get) {
			out = append(out, r)
		}
	}
	sortRecords(out, req.Sort)
	return nonNil(out), nil
}

func nonNil(records []contract.RawRecord) []contract.RawRecord {
	if records == nil {
		return []contract.RawRecord{}
	}
	return records
}

// sortRecords orders records by the sort specs, keeping document order for ties.
func sortRecords(records []contract.RawRecord, specs []schema.SortSpec) {
	if len(specs) == 0 {
		return
	}
	slices.SortStableFunc(records, func(a, b contract.RawRecord) int {
		for _, s := range specs {
			c := query.CompareValues(a.Get(s.Attribute), b.Get(s.Attribute))
			if s.Direction == schema.SortDesc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
}

// ExecuteAction records the action and notifies subscribers of the record.
func (h *FileHost) ExecuteAction(_ context.Context, name string, recordID string) error {
	h.mu.Lock()
	h.actions = append(h.actions, Action{Name: name, RecordID: recordID, At: time.Now()})
	h.mu.Unlock()
	logging.Info().Str("procedure", name).Str("record", recordID).Msg("Executed click action")
	h.Touch(recordID)
	return nil
}

// OpenPage logs the page request.
func (h *FileHost) OpenPage(_ context.Context, page string, recordID string) error {
	logging.Info().Str("page", page).Str("record", recordID).Msg("Open page requested")
	return nil
}

// Actions returns the click actions executed so far.
func (h *FileHost) Actions() []Action {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.actions)
}

// Subscribe registers callback for changes of recordID.
func (h *FileHost) Subscribe(recordID string, callback func()) (schema.SubscriptionHandle, error) {
	if callback == nil {
		return "", fmt.Errorf("callback is required")
	}
	handle := schema.SubscriptionHandle(uuid.NewString())
	h.subMu.Lock()
	h.subs[handle] = subscription{recordID: recordID, callback: callback}
	h.subMu.Unlock()
	return handle, nil
}

// Unsubscribe removes a subscription.
func (h *FileHost) Unsubscribe(handle schema.SubscriptionHandle) error {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	if _, ok := h.subs[handle]; !ok {
		return fmt.Errorf("unknown subscription %s", handle)
	}
	delete(h.subs, handle)
	return nil
}

// Touch notifies the subscribers of recordID. An empty id notifies everyone.
func (h *FileHost) Touch(recordID string) {
	h.subMu.Lock()
	var fire []func()
	for _, s := range h.subs {
		if recordID == "" || s.recordID == recordID {
			fire = append(fire, s.callback)
		}
	}
	h.subMu.Unlock()

	for _, cb := range fire {
		cb()
	}
}

// GetStatus returns status information about the file host.
func (h *FileHost) GetStatus() (schema.HostStatus, error) {
	h.mu.RLock()
	status := schema.HostStatus{
		Backend:        string(schema.FileBackend),
		Connected:      h.entities != nil,
		Procedures:     len(h.procedures),
		LastRevisionAt: h.loadedAt,
		TableSizes:     make(map[string]int64, len(h.entities)),
	}
	for name, records := range h.entities {
		status.TableSizes[name] = int64(len(records))
		status.TrackedRecords += len(records)
	}
	h.mu.RUnlock()

	status.NotifierBackend = "none"
	if h.watcher != nil {
		status.NotifierBackend = "fsnotify"
	}
	h.subMu.Lock()
	status.ActiveWatches = len(h.subs)
	h.subMu.Unlock()
	return status, nil
}

// startWatcher watches the parent directory so editors that replace the file are handled.
func (h *FileHost) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(h.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", h.path, err)
	}
	h.watcher = watcher
	h.done = make(chan struct{})
	go h.watchLoop()
	return nil
}

func (h *FileHost) watchLoop() {
	defer close(h.done)
	target := filepath.Clean(h.path)
	for {
		select {
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if err := h.Reload(); err != nil {
				logging.Warn().Str("path", h.path).Err(err).Msg("Failed to reload host file")
				continue
			}
			logging.Debug().Str("path", h.path).Msg("Host file reloaded")
			h.Touch("")
		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			logging.Warn().Err(err).Msg("Host file watcher error")
		}
	}
}

// Close stops the file watcher.
func (h *FileHost) Close() error {
	if h.watcher == nil {
		return nil
	}
	err := h.watcher.Close()
	<-h.done
	h.watcher = nil
	return err
}
