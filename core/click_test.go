package core

import (
	"context"
	"errors"
	"testing"

	"github.com/huangsam/chartwire/internal/hostdb"
	"github.com/huangsam/chartwire/internal/render"
	"github.com/huangsam/chartwire/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRunClickAction(t *testing.T) {
	ctx := context.Background()

	t.Run("do nothing", func(t *testing.T) {
		host := &hostdb.MockHostDataSource{}
		assert.NoError(t, RunClickAction(ctx, host, schema.ClickConfig{Action: schema.DoNothing}, "r1"))
		host.AssertNotCalled(t, "ExecuteAction", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("no record", func(t *testing.T) {
		host := &hostdb.MockHostDataSource{}
		assert.NoError(t, RunClickAction(ctx, host, schema.ClickConfig{Action: schema.ShowPage, Page: "Detail"}, ""))
	})

	t.Run("show page", func(t *testing.T) {
		host := &hostdb.MockHostDataSource{}
		host.On("OpenPage", ctx, "Detail", "r1").Return(nil).Once()
		assert.NoError(t, RunClickAction(ctx, host, schema.ClickConfig{Action: schema.ShowPage, Page: "Detail"}, "r1"))
		host.AssertExpectations(t)
	})

	t.Run("call procedure", func(t *testing.T) {
		host := &hostdb.MockHostDataSource{}
		host.On("ExecuteAction", ctx, "Sales.Touch", "r1").Return(nil).Once()
		assert.NoError(t, RunClickAction(ctx, host, schema.ClickConfig{Action: schema.CallProcedure, Procedure: "Sales.Touch"}, "r1"))
		host.AssertExpectations(t)
	})

	t.Run("call procedure failure", func(t *testing.T) {
		host := &hostdb.MockHostDataSource{}
		host.On("ExecuteAction", ctx, "Sales.Touch", "r1").Return(errors.New("denied")).Once()
		err := RunClickAction(ctx, host, schema.ClickConfig{Action: schema.CallProcedure, Procedure: "Sales.Touch"}, "r1")
		assert.EqualError(t, err, "error retrieving procedure data Sales.Touch: denied")
	})

	t.Run("missing parameters", func(t *testing.T) {
		host := &hostdb.MockHostDataSource{}
		assert.Error(t, RunClickAction(ctx, host, schema.ClickConfig{Action: schema.ShowPage}, "r1"))
		assert.Error(t, RunClickAction(ctx, host, schema.ClickConfig{Action: schema.CallProcedure}, "r1"))
	})

	t.Run("host without actions", func(t *testing.T) {
		err := RunClickAction(ctx, newFakeHost(), schema.ClickConfig{Action: schema.ShowPage, Page: "Detail"}, "r1")
		assert.Error(t, err)
	})
}

func TestContainerHandleClickNotifies(t *testing.T) {
	host := &hostdb.MockHostDataSource{}
	host.On("Subscribe", "r1", mock.Anything).Return(schema.SubscriptionHandle("h1"), nil)
	host.On("Get", mock.Anything, mock.Anything).Return(nil, nil)
	host.On("ExecuteAction", mock.Anything, "Sales.Touch", "r1").Return(errors.New("denied"))

	adapter := &render.MockChartAdapter{}
	adapter.On("Draw", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	notifier := &recordingNotifier{}

	cfg := singleSeriesChart()
	cfg.OnClick = schema.ClickConfig{Action: schema.CallProcedure, Procedure: "Sales.Touch"}
	c := NewContainer("chart", host, adapter, notifier)
	require.NoError(t, c.Mount(context.Background(), cfg, "r1"))
	c.Wait()

	assert.Error(t, c.HandleClick(context.Background()))
	assert.Equal(t, []string{"error retrieving procedure data Sales.Touch: denied"}, notifier.all())
}
