package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/schema"
)

// fakeHost answers retrievals from canned records keyed by query expression or
// procedure name. Gates let tests control completion order.
type fakeHost struct {
	mu        sync.Mutex
	records   map[string][]contract.RawRecord
	errs      map[string]error
	gates     map[string]chan struct{}
	requests  []schema.RetrieveRequest
	callbacks map[schema.SubscriptionHandle]func()
	active    int
	maxActive int
	subs      int
	unsubs    int
	next      int
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		records:   map[string][]contract.RawRecord{},
		errs:      map[string]error{},
		gates:     map[string]chan struct{}{},
		callbacks: map[schema.SubscriptionHandle]func(){},
	}
}

func requestKey(req schema.RetrieveRequest) string {
	if req.ActionName != "" {
		return req.ActionName
	}
	return req.QueryExpression
}

func (h *fakeHost) gate(key string) chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan struct{})
	h.gates[key] = ch
	return ch
}

func (h *fakeHost) Get(ctx context.Context, req schema.RetrieveRequest) ([]contract.RawRecord, error) {
	key := requestKey(req)
	h.mu.Lock()
	h.requests = append(h.requests, req)
	gate := h.gates[key]
	h.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.errs[key]; err != nil {
		return nil, err
	}
	return h.records[key], nil
}

func (h *fakeHost) Subscribe(recordID string, callback func()) (schema.SubscriptionHandle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	handle := schema.SubscriptionHandle(fmt.Sprintf("%s-%d", recordID, h.next))
	h.callbacks[handle] = callback
	h.subs++
	h.active++
	if h.active > h.maxActive {
		h.maxActive = h.active
	}
	return handle, nil
}

func (h *fakeHost) Unsubscribe(handle schema.SubscriptionHandle) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.callbacks[handle]; !ok {
		return fmt.Errorf("unknown handle %s", handle)
	}
	delete(h.callbacks, handle)
	h.unsubs++
	h.active--
	return nil
}

// fire invokes every active subscription callback.
func (h *fakeHost) fire() {
	h.mu.Lock()
	var cbs []func()
	for _, cb := range h.callbacks {
		cbs = append(cbs, cb)
	}
	h.mu.Unlock()
	for _, cb := range cbs {
		cb()
	}
}

func (h *fakeHost) requestCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.requests)
}

func point(id, x string, y any) contract.RawRecord {
	return schema.NewMapRecord(id, map[string]any{"month": x, "amount": y})
}

// recordingNotifier collects notifications.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}
