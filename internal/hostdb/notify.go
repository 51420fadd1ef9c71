package hostdb

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/internal/logging"
	"github.com/huangsam/chartwire/internal/query"
	"github.com/huangsam/chartwire/schema"
	"github.com/redis/go-redis/v9"
)

// recordChannelPrefix prefixes the Redis channel of each record.
const recordChannelPrefix = "chartwire:record:"

// RecordChannel returns the Redis channel carrying changes of a record.
func RecordChannel(recordID string) string {
	return recordChannelPrefix + recordID
}

// Publisher announces record changes to other processes.
type Publisher interface {
	Publish(ctx context.Context, recordID string, revision int64) error
}

type watch struct {
	recordID string
	callback func()
}

// PollNotifier detects record changes by polling the revisions table.
type PollNotifier struct {
	db       *sql.DB
	backend  schema.DatabaseBackend
	interval time.Duration

	mu        sync.Mutex
	watches   map[schema.SubscriptionHandle]watch
	revisions map[string]int64
	stop      chan struct{}
	done      chan struct{}
	closed    bool
}

var _ contract.ChangeNotifier = &PollNotifier{} // Compile-time check

// NewPollNotifier creates a notifier polling db every interval.
// The polling loop starts with the first watch.
func NewPollNotifier(db *sql.DB, backend schema.DatabaseBackend, interval time.Duration) *PollNotifier {
	if interval <= 0 {
		interval = contract.DefaultPollInterval
	}
	return &PollNotifier{
		db:        db,
		backend:   backend,
		interval:  interval,
		watches:   make(map[schema.SubscriptionHandle]watch),
		revisions: make(map[string]int64),
	}
}

// Watch registers callback for changes of recordID.
func (n *PollNotifier) Watch(recordID string, callback func()) (schema.SubscriptionHandle, error) {
	if callback == nil {
		return "", fmt.Errorf("callback is required")
	}
	baseline, err := n.readRevisions(context.Background(), []string{recordID})
	if err != nil {
		return "", err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return "", fmt.Errorf("notifier is closed")
	}
	if _, tracked := n.revisions[recordID]; !tracked {
		n.revisions[recordID] = baseline[recordID]
	}
	handle := schema.SubscriptionHandle(uuid.NewString())
	n.watches[handle] = watch{recordID: recordID, callback: callback}
	if n.stop == nil {
		n.stop = make(chan struct{})
		n.done = make(chan struct{})
		go n.loop(n.stop, n.done)
	}
	return handle, nil
}

// Unwatch removes a watch. Callbacks already running are not waited for.
func (n *PollNotifier) Unwatch(handle schema.SubscriptionHandle) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	w, ok := n.watches[handle]
	if !ok {
		return fmt.Errorf("unknown subscription %s", handle)
	}
	delete(n.watches, handle)
	if !n.watchedLocked(w.recordID) {
		delete(n.revisions, w.recordID)
	}
	return nil
}

// ActiveWatches returns the number of registered watches.
func (n *PollNotifier) ActiveWatches() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.watches)
}

// Close stops the polling loop.
func (n *PollNotifier) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	stop, done := n.stop, n.done
	n.watches = make(map[schema.SubscriptionHandle]watch)
	n.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	return nil
}

func (n *PollNotifier) loop(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := n.Poll(context.Background()); err != nil {
				logging.Warn().Err(err).Msg("Revision poll failed")
			}
		}
	}
}

// Poll checks the revisions of every watched record once and fires the
// callbacks of records whose revision moved.
func (n *PollNotifier) Poll(ctx context.Context) error {
	n.mu.Lock()
	ids := make([]string, 0, len(n.revisions))
	for id := range n.revisions {
		ids = append(ids, id)
	}
	n.mu.Unlock()
	if len(ids) == 0 {
		return nil
	}

	current, err := n.readRevisions(ctx, ids)
	if err != nil {
		return err
	}

	var fire []func()
	n.mu.Lock()
	for id, rev := range current {
		last, tracked := n.revisions[id]
		if !tracked || rev == last {
			continue
		}
		n.revisions[id] = rev
		for _, w := range n.watches {
			if w.recordID == id {
				fire = append(fire, w.callback)
			}
		}
	}
	n.mu.Unlock()

	for _, cb := range fire {
		cb()
	}
	return nil
}

func (n *PollNotifier) watchedLocked(recordID string) bool {
	for _, w := range n.watches {
		if w.recordID == recordID {
			return true
		}
	}
	return false
}

// readRevisions returns the stored revision of each record; missing records have revision 0.
func (n *PollNotifier) readRevisions(ctx context.Context, ids []string) (map[string]int64, error) {
	out := make(map[string]int64, len(ids))
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		out[id] = 0
		placeholders[i] = query.Placeholder(n.backend, i+1)
		args[i] = id
	}

	stmt := fmt.Sprintf("SELECT record_id, revision FROM %s WHERE record_id IN (%s)",
		query.QuoteIdent(revisionsTable, n.backend), strings.Join(placeholders, ", "))
	rows, err := n.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read revisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id string
		var rev int64
		if err := rows.Scan(&id, &rev); err != nil {
			return nil, err
		}
		out[id] = rev
	}
	return out, rows.Err()
}

// RedisNotifier delivers record changes over Redis pub/sub.
type RedisNotifier struct {
	client *redis.Client

	mu      sync.Mutex
	watches map[schema.SubscriptionHandle]*redis.PubSub
	wg      sync.WaitGroup
}

var (
	_ contract.ChangeNotifier = &RedisNotifier{} // Compile-time check
	_ Publisher               = &RedisNotifier{} // Compile-time check
)

// NewRedisNotifier connects to Redis and verifies the connection.
func NewRedisNotifier(addr, password string, db int) (*RedisNotifier, error) {
	if addr == "" {
		addr = contract.DefaultRedisAddr
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return NewRedisNotifierFromClient(client), nil
}

// NewRedisNotifierFromClient wraps an existing client.
func NewRedisNotifierFromClient(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{
		client:  client,
		watches: make(map[schema.SubscriptionHandle]*redis.PubSub),
	}
}

// Watch subscribes to the channel of recordID.
func (n *RedisNotifier) Watch(recordID string, callback func()) (schema.SubscriptionHandle, error) {
	if callback == nil {
		return "", fmt.Errorf("callback is required")
	}
	ctx := context.Background()
	ps := n.client.Subscribe(ctx, RecordChannel(recordID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return "", fmt.Errorf("failed to subscribe to record %s: %w", recordID, err)
	}

	handle := schema.SubscriptionHandle(uuid.NewString())
	n.mu.Lock()
	n.watches[handle] = ps
	n.mu.Unlock()

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		for range ps.Channel() {
			callback()
		}
	}()
	return handle, nil
}

// Unwatch closes the subscription of handle.
func (n *RedisNotifier) Unwatch(handle schema.SubscriptionHandle) error {
	n.mu.Lock()
	ps, ok := n.watches[handle]
	delete(n.watches, handle)
	n.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown subscription %s", handle)
	}
	return ps.Close()
}

// ActiveWatches returns the number of open subscriptions.
func (n *RedisNotifier) ActiveWatches() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.watches)
}

// Publish announces a new revision of recordID.
func (n *RedisNotifier) Publish(ctx context.Context, recordID string, revision int64) error {
	if err := n.client.Publish(ctx, RecordChannel(recordID), strconv.FormatInt(revision, 10)).Err(); err != nil {
		return fmt.Errorf("failed to publish change of %s: %w", recordID, err)
	}
	return nil
}

// Close closes every subscription and the client.
func (n *RedisNotifier) Close() error {
	n.mu.Lock()
	for handle, ps := range n.watches {
		_ = ps.Close()
		delete(n.watches, handle)
	}
	n.mu.Unlock()
	n.wg.Wait()
	return n.client.Close()
}

// noopNotifier accepts watches but never fires them.
type noopNotifier struct {
	mu      sync.Mutex
	watches map[schema.SubscriptionHandle]string
}

// NewNoopNotifier returns a notifier that never reports changes.
func NewNoopNotifier() contract.ChangeNotifier {
	return &noopNotifier{watches: make(map[schema.SubscriptionHandle]string)}
}

func (n *noopNotifier) Watch(recordID string, _ func()) (schema.SubscriptionHandle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	handle := schema.SubscriptionHandle(uuid.NewString())
	n.watches[handle] = recordID
	return handle, nil
}

func (n *noopNotifier) Unwatch(handle schema.SubscriptionHandle) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.watches[handle]; !ok {
		return fmt.Errorf("unknown subscription %s", handle)
	}
	delete(n.watches, handle)
	return nil
}

func (n *noopNotifier) ActiveWatches() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.watches)
}

func (n *noopNotifier) Close() error { return nil }
