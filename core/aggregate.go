package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/felixgeelhaar/statekit"
	"github.com/huangsam/chartwire/internal/logging"
	"github.com/huangsam/chartwire/schema"
)

// Aggregator states.
const (
	StateEmpty      statekit.StateID = "empty"
	StateCollecting statekit.StateID = "collecting"
	StateComplete   statekit.StateID = "complete"
	StateFailed     statekit.StateID = "failed"
)

// Aggregator events.
const (
	eventCollect  statekit.EventType = "COLLECT"
	eventComplete statekit.EventType = "COMPLETE"
	eventFail     statekit.EventType = "FAIL"
)

// Errors returned by Insert.
var (
	ErrSlotFilled      = errors.New("series slot already filled")
	ErrSlotOutOfRange  = errors.New("series index out of range")
	ErrDataSetSealed   = errors.New("dataset is already complete or failed")
	ErrDataSetNotReady = errors.New("dataset is not complete")
)

// aggregateContext is the statekit machine context for one cycle.
type aggregateContext struct {
	kind  schema.ChartKind
	total int
}

// newAggregateMachine builds the per-cycle statechart.
func newAggregateMachine(kind schema.ChartKind, total int) (*statekit.MachineConfig[*aggregateContext], error) {
	return statekit.NewMachine[*aggregateContext]("aggregator").
		WithInitial(StateEmpty).
		WithContext(&aggregateContext{kind: kind, total: total}).
		WithAction("logEntry", logAggregateEntry).
		State(StateEmpty).
			On(eventCollect).Target(StateCollecting).
			On(eventComplete).Target(StateComplete).
			On(eventFail).Target(StateFailed).
			Done().
		State(StateCollecting).
			On(eventComplete).Target(StateComplete).
			On(eventFail).Target(StateFailed).
			Done().
		State(StateComplete).
			Final().
			OnEntry("logEntry").
			Done().
		State(StateFailed).
			Final().
			OnEntry("logEntry").
			Done().
		Build()
}

func logAggregateEntry(ctx **aggregateContext, event statekit.Event) {
	c := *ctx
	logging.Debug().
		Str("kind", string(c.kind)).
		Int("series", c.total).
		Str("event", string(event.Type)).
		Msg("Aggregation finished")
}

// Aggregator collects N series results arriving in any order and exposes them
// in configured order once every slot has been filled exactly once.
type Aggregator struct {
	mu     sync.Mutex
	interp *statekit.Interpreter[*aggregateContext]
	kind   schema.ChartKind
	slots  []schema.SeriesResult
	filled []bool
	count  int
	err    error
}

// NewAggregator starts an aggregator for one cycle with a fixed number of slots.
func NewAggregator(kind schema.ChartKind, total int) (*Aggregator, error) {
	if total < 0 {
		return nil, fmt.Errorf("series count must not be negative (received %d)", total)
	}
	machine, err := newAggregateMachine(kind, total)
	if err != nil {
		return nil, fmt.Errorf("failed to build aggregator: %w", err)
	}
	interp := statekit.NewInterpreter(machine)
	interp.Start()

	a := &Aggregator{
		interp: interp,
		kind:   kind,
		slots:  make([]schema.SeriesResult, total),
		filled: make([]bool, total),
	}
	if total == 0 {
		interp.Send(statekit.Event{Type: eventComplete})
	}
	return a, nil
}

// State returns the current aggregator state.
func (a *Aggregator) State() statekit.StateID {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.interp.State().Value
}

// Insert stores a result at its series index. It reports whether this insert completed the dataset.
func (a *Aggregator) Insert(result schema.SeriesResult) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.interp.Done() {
		return false, ErrDataSetSealed
	}
	if result.SeriesIndex < 0 || result.SeriesIndex >= len(a.slots) {
		return false, fmt.Errorf("%w: %d of %d", ErrSlotOutOfRange, result.SeriesIndex, len(a.slots))
	}
	if a.filled[result.SeriesIndex] {
		return false, fmt.Errorf("%w: %d", ErrSlotFilled, result.SeriesIndex)
	}

	a.slots[result.SeriesIndex] = result
	a.filled[result.SeriesIndex] = true
	a.count++

	if a.interp.Matches(StateEmpty) {
		a.interp.Send(statekit.Event{Type: eventCollect})
	}
	if a.count == len(a.slots) {
		a.interp.Send(statekit.Event{Type: eventComplete})
		return true, nil
	}
	return false, nil
}

// Fail discards any partial results. It returns true only for the first failure.
func (a *Aggregator) Fail(err error) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.interp.Done() {
		return false
	}
	a.err = err
	a.slots = nil
	a.filled = nil
	a.interp.Send(statekit.Event{Type: eventFail, Payload: err})
	return true
}

// Err returns the failure recorded by Fail.
func (a *Aggregator) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// DataSet returns the ordered dataset. A failed cycle yields an empty dataset and
// its error; an unfinished cycle yields ErrDataSetNotReady.
func (a *Aggregator) DataSet() (schema.ChartDataSet, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch {
	case a.interp.Matches(StateComplete):
		series := make([]schema.SeriesResult, len(a.slots))
		copy(series, a.slots)
		return schema.ChartDataSet{Kind: a.kind, Series: series}, nil
	case a.interp.Matches(StateFailed):
		return schema.EmptyDataSet(a.kind), a.err
	default:
		return schema.EmptyDataSet(a.kind), ErrDataSetNotReady
	}
}
