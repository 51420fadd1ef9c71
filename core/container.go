package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/internal/logging"
	"github.com/huangsam/chartwire/schema"
)

// Container is one mounted chart widget. It owns the subscription to its bound
// record and the dataset of the current cycle.
type Container struct {
	mu       sync.Mutex
	target   string
	host     contract.HostDataSource
	adapter  contract.ChartAdapter
	notifier contract.Notifier
	pipeline *Pipeline

	baseCtx  context.Context
	cfg      schema.ChartConfig
	render   schema.RenderOptions
	alert    string
	recordID string
	handle   schema.SubscriptionHandle

	generation uint64
	cancel     context.CancelFunc
	inflight   sync.WaitGroup
	mounted    bool
}

// NewContainer creates a container that draws into target.
func NewContainer(target string, host contract.HostDataSource, adapter contract.ChartAdapter, notifier contract.Notifier) *Container {
	return &Container{
		target:   target,
		host:     host,
		adapter:  adapter,
		notifier: notifier,
		pipeline: NewPipeline(host),
	}
}

// Mount binds the container to its first configuration and record and starts a cycle.
// ctx bounds every cycle started by the container.
func (c *Container) Mount(ctx context.Context, cfg schema.ChartConfig, recordID string) error {
	c.mu.Lock()
	c.baseCtx = ctx
	c.mounted = true
	c.mu.Unlock()
	return c.Update(ctx, cfg, recordID)
}

// Update applies a property change. The subscription is always rebuilt for the
// new record and a fresh cycle is started. Cycles always run under the context
// given to Mount; ctx only stops Update from applying a change once it is done.
func (c *Container) Update(ctx context.Context, cfg schema.ChartConfig, recordID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted {
		return fmt.Errorf("container %s is not mounted", c.target)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c.cfg = cfg
	c.alert = ValidateChart(&cfg)
	c.render = cfg.Render
	c.render.Style = ParseStyle(cfg.Style)

	if err := c.resetSubscriptionLocked(recordID); err != nil {
		return err
	}
	c.startCycleLocked()
	return nil
}

// Refresh re-pulls all data for the bound record. It is the subscription callback.
func (c *Container) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted {
		return
	}
	c.startCycleLocked()
}

// Resize asks the adapter to re-layout the chart.
func (c *Container) Resize() error {
	return c.adapter.Resize(c.target)
}

// Unmount tears down the subscription, drops any in-flight cycle and destroys the chart.
func (c *Container) Unmount() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.mounted {
		return nil
	}
	c.mounted = false
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.unsubscribeLocked()
	c.recordID = ""
	return c.adapter.Destroy(c.target)
}

// Wait blocks until all started cycles have finished.
func (c *Container) Wait() {
	c.inflight.Wait()
}

// RecordID returns the bound record.
func (c *Container) RecordID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recordID
}

// Subscribed reports whether a subscription is active.
func (c *Container) Subscribed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle != ""
}

// resetSubscriptionLocked tears down the current subscription and subscribes to recordID.
func (c *Container) resetSubscriptionLocked(recordID string) error {
	c.unsubscribeLocked()
	c.recordID = recordID
	if recordID == "" {
		return nil
	}
	handle, err := c.host.Subscribe(recordID, c.Refresh)
	if err != nil {
		return fmt.Errorf("failed to subscribe to record %s: %w", recordID, err)
	}
	c.handle = handle
	return nil
}

func (c *Container) unsubscribeLocked() {
	if c.handle == "" {
		return
	}
	if err := c.host.Unsubscribe(c.handle); err != nil {
		contract.LogWarn("Error unsubscribing from record "+c.recordID, err)
	}
	c.handle = ""
}

// startCycleLocked supersedes the running cycle and starts a new one.
func (c *Container) startCycleLocked() {
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.recordID == "" {
		return
	}

	if c.alert != "" {
		c.showAlertLocked(c.alert)
		return
	}

	ctx, cancel := context.WithCancel(c.baseCtx)
	c.cancel = cancel
	gen := c.generation
	cfg := c.cfg
	recordID := c.recordID

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		ds, err := c.pipeline.Collect(ctx, &cfg, recordID)
		c.finish(ctx, gen, ds, err)
	}()
}

// finish hands a cycle result to the adapter unless the cycle has been superseded
// or its context was cancelled. A cancelled cycle leaves the last drawn chart in place.
func (c *Container) finish(ctx context.Context, gen uint64, ds schema.ChartDataSet, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		logging.Debug().Str("target", c.target).Int64("generation", int64(gen)).Msg("Discarding stale cycle")
		return
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		logging.Debug().Str("target", c.target).Int64("generation", int64(gen)).Msg("Dropping cancelled cycle")
		if c.cancel != nil {
			c.cancel()
			c.cancel = nil
		}
		return
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if err != nil {
		c.notifier.Error(err.Error())
		ds = schema.EmptyDataSet(c.cfg.Kind)
	}
	if drawErr := c.adapter.Draw(c.target, ds, c.cfg.Layout, c.render); drawErr != nil {
		logging.Error().Str("target", c.target).Err(drawErr).Msg("Failed to draw chart")
	}
}

// showAlertLocked replaces the chart with a configuration message.
func (c *Container) showAlertLocked(message string) {
	if alerter, ok := c.adapter.(contract.Alerter); ok {
		if err := alerter.Alert(c.target, message); err != nil {
			logging.Error().Str("target", c.target).Err(err).Msg("Failed to show alert")
		}
		return
	}
	c.notifier.Error(message)
}
