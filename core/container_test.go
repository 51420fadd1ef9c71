package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/internal/render"
	"github.com/huangsam/chartwire/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func singleSeriesChart() schema.ChartConfig {
	return schema.ChartConfig{
		Kind:  schema.LineChart,
		Style: "background-color: #eee",
		Series: []schema.SeriesConfig{{
			Name:       "Revenue",
			Mode:       schema.QueryPathMode,
			EntityPath: "Sales.Point",
			Constraint: "[chart = '[%CurrentObject%]']",
			XAttribute: "month",
			YAttribute: "amount",
		}},
	}
}

func TestContainerMountDrawsCompleteDataSet(t *testing.T) {
	host := newFakeHost()
	host.records["//Sales.Point[chart = 'c1']"] = []contract.RawRecord{point("1", "Jan", "10"), point("2", "Feb", "20")}
	adapter := &render.MockChartAdapter{}
	notifier := &recordingNotifier{}

	expected := schema.ChartDataSet{Kind: schema.LineChart, Series: []schema.SeriesResult{{
		SeriesIndex: 0,
		Name:        "Revenue",
		Points:      []schema.NormalizedPoint{{X: "Jan", Y: 10}, {X: "Feb", Y: 20}},
	}}}
	adapter.On("Draw", "chart", expected, mock.Anything, mock.MatchedBy(func(r schema.RenderOptions) bool {
		return r.Style["backgroundColor"] == "#eee"
	})).Return(nil).Once()

	c := NewContainer("chart", host, adapter, notifier)
	require.NoError(t, c.Mount(context.Background(), singleSeriesChart(), "c1"))
	c.Wait()

	adapter.AssertExpectations(t)
	assert.Empty(t, notifier.all())
	assert.True(t, c.Subscribed())
	assert.Equal(t, "c1", c.RecordID())
}

func TestContainerNoRecordDrawsNothing(t *testing.T) {
	host := newFakeHost()
	adapter := &render.MockChartAdapter{}

	c := NewContainer("chart", host, adapter, &recordingNotifier{})
	require.NoError(t, c.Mount(context.Background(), singleSeriesChart(), ""))
	c.Wait()

	adapter.AssertNotCalled(t, "Draw", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 0, host.requestCount())
	assert.False(t, c.Subscribed())
}

func TestContainerConfigurationErrorAlerts(t *testing.T) {
	host := newFakeHost()
	adapter := &render.MockChartAdapter{}
	adapter.On("Alert", "chart", mock.MatchedBy(func(msg string) bool {
		return assert.ObjectsAreEqual("Configuration error in bar chart:\n\n- Series #1: 'Data source' is set to 'Procedure' but 'Procedure' is missing", msg)
	})).Return(nil).Once()

	cfg := schema.ChartConfig{Kind: schema.BarChart, Series: []schema.SeriesConfig{{Mode: schema.ProcedureMode}}}
	c := NewContainer("chart", host, adapter, &recordingNotifier{})
	require.NoError(t, c.Mount(context.Background(), cfg, "c1"))
	c.Wait()

	adapter.AssertExpectations(t)
	adapter.AssertNotCalled(t, "Draw", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 0, host.requestCount(), "no fetch is issued for an invalid configuration")
}

func TestContainerRetrievalErrorNotifiesAndDrawsEmpty(t *testing.T) {
	host := newFakeHost()
	host.errs["//Sales.Point[chart = 'c1']"] = errors.New("timeout")
	adapter := &render.MockChartAdapter{}
	adapter.On("Draw", "chart", schema.EmptyDataSet(schema.LineChart), mock.Anything, mock.Anything).Return(nil).Once()
	notifier := &recordingNotifier{}

	c := NewContainer("chart", host, adapter, notifier)
	require.NoError(t, c.Mount(context.Background(), singleSeriesChart(), "c1"))
	c.Wait()

	adapter.AssertExpectations(t)
	assert.Equal(t, []string{"error retrieving data via query path (//Sales.Point[chart = 'c1']): timeout"}, notifier.all())
}

func TestContainerRebindKeepsOneSubscription(t *testing.T) {
	host := newFakeHost()
	adapter := &render.MockChartAdapter{}
	adapter.On("Draw", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	adapter.On("Destroy", "chart").Return(nil).Once()

	c := NewContainer("chart", host, adapter, &recordingNotifier{})
	ctx := context.Background()
	require.NoError(t, c.Mount(ctx, singleSeriesChart(), "a"))
	require.NoError(t, c.Update(ctx, singleSeriesChart(), "b"))
	require.NoError(t, c.Update(ctx, singleSeriesChart(), "c"))
	c.Wait()

	assert.Equal(t, 3, host.subs)
	assert.Equal(t, 2, host.unsubs)
	assert.Equal(t, 1, host.maxActive, "never two subscriptions at once")

	require.NoError(t, c.Update(ctx, singleSeriesChart(), ""))
	assert.Equal(t, 0, host.active)

	require.NoError(t, c.Unmount())
	c.Wait()
	assert.Equal(t, 0, host.active)
	adapter.AssertExpectations(t)
}

func TestContainerUnmountTearsDownSubscription(t *testing.T) {
	host := newFakeHost()
	adapter := &render.MockChartAdapter{}
	adapter.On("Draw", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	adapter.On("Destroy", "chart").Return(nil).Once()

	c := NewContainer("chart", host, adapter, &recordingNotifier{})
	require.NoError(t, c.Mount(context.Background(), singleSeriesChart(), "a"))
	c.Wait()
	require.NoError(t, c.Unmount())

	assert.Equal(t, 0, host.active)
	assert.False(t, c.Subscribed())
	assert.Error(t, c.Update(context.Background(), singleSeriesChart(), "a"))
	adapter.AssertExpectations(t)
}

func TestContainerSubscriptionCallbackRefreshes(t *testing.T) {
	host := newFakeHost()
	key := "//Sales.Point[chart = 'c1']"
	host.records[key] = []contract.RawRecord{point("1", "Jan", "10")}
	adapter := &render.MockChartAdapter{}
	adapter.On("Draw", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Twice()

	c := NewContainer("chart", host, adapter, &recordingNotifier{})
	require.NoError(t, c.Mount(context.Background(), singleSeriesChart(), "c1"))
	c.Wait()

	host.fire()
	c.Wait()

	assert.Equal(t, 2, host.requestCount())
	adapter.AssertNumberOfCalls(t, "Draw", 2)
}

func TestContainerDiscardsStaleCycle(t *testing.T) {
	host := newFakeHost()
	staleKey := "//Sales.Point[chart = 'old']"
	host.records[staleKey] = []contract.RawRecord{point("1", "Jan", "1")}
	host.records["//Sales.Point[chart = 'new']"] = []contract.RawRecord{point("2", "Feb", "2")}
	stale := host.gate(staleKey)

	adapter := &render.MockChartAdapter{}
	adapter.On("Draw", "chart", mock.MatchedBy(func(ds schema.ChartDataSet) bool {
		return len(ds.Series) == 1 && ds.Series[0].Points[0].X == "Feb"
	}), mock.Anything, mock.Anything).Return(nil).Once()

	c := NewContainer("chart", host, adapter, &recordingNotifier{})
	ctx := context.Background()
	require.NoError(t, c.Mount(ctx, singleSeriesChart(), "old"))
	require.NoError(t, c.Update(ctx, singleSeriesChart(), "new"))

	time.Sleep(10 * time.Millisecond)
	close(stale)
	c.Wait()

	adapter.AssertExpectations(t)
	adapter.AssertNumberOfCalls(t, "Draw", 1)
}

func TestContainerCancelledMountKeepsLastChart(t *testing.T) {
	host := newFakeHost()
	key := "//Sales.Point[chart = 'c1']"
	host.records[key] = []contract.RawRecord{point("1", "Jan", "10")}
	gate := host.gate(key)
	defer close(gate)

	adapter := &render.MockChartAdapter{}
	adapter.On("Draw", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	notifier := &recordingNotifier{}

	ctx, cancel := context.WithCancel(context.Background())
	c := NewContainer("chart", host, adapter, notifier)
	require.NoError(t, c.Mount(ctx, singleSeriesChart(), "c1"))
	require.Eventually(t, func() bool { return host.requestCount() == 1 }, time.Second, time.Millisecond)

	cancel()
	c.Wait()

	adapter.AssertNotCalled(t, "Draw", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, notifier.all())
}

func TestContainerUpdateWithDoneContext(t *testing.T) {
	host := newFakeHost()
	adapter := &render.MockChartAdapter{}
	adapter.On("Draw", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	c := NewContainer("chart", host, adapter, &recordingNotifier{})
	require.NoError(t, c.Mount(context.Background(), singleSeriesChart(), "a"))
	c.Wait()

	done, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Update(done, singleSeriesChart(), "b"), context.Canceled)
	assert.Equal(t, "a", c.RecordID())
	assert.Equal(t, 1, host.subs)
}

func TestContainerResize(t *testing.T) {
	adapter := &render.MockChartAdapter{}
	adapter.On("Resize", "chart").Return(nil).Once()
	c := NewContainer("chart", newFakeHost(), adapter, &recordingNotifier{})
	assert.NoError(t, c.Resize())
	adapter.AssertExpectations(t)
}
