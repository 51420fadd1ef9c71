package hostfile

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/huangsam/chartwire/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salesDoc = `
entities:
  Sales.SalesSeries:
    - id: s-east
      chart: c1
      name: East
      color: "#5470c6"
      sortOrder: 1
    - id: s-west
      chart: c1
      name: West
      sortOrder: 0
  Sales.SalesPoint:
    - {id: p1, series: s-east, month: Jan, amount: "120", sortOrder: 2}
    - {id: p2, series: s-east, month: Feb, amount: 98.6, sortOrder: 1}
    - {id: p3, series: s-west, month: Jan, amount: 80, sortOrder: 10}
    - {id: p4, series: s-west, month: Feb, sortOrder: 3}
procedures:
  Sales.PointsBySeries:
    entity: Sales.SalesPoint
    reference: Series
    sort: SortOrder
  Sales.AllSeries:
    entity: Sales.SalesSeries
    sort: Name
    desc: true
`

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "host.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestHost(t *testing.T, watch bool) (*FileHost, string) {
	t.Helper()
	path := writeDoc(t, salesDoc)
	h, err := NewFileHost(path, watch)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h, path
}

func ids(t *testing.T, h *FileHost, req schema.RetrieveRequest) []string {
	t.Helper()
	records, err := h.Get(context.Background(), req)
	require.NoError(t, err)
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID())
	}
	return out
}

func TestFileHostQuery(t *testing.T) {
	h, _ := newTestHost(t, false)

	tests := []struct {
		name string
		req  schema.RetrieveRequest
		want []string
	}{
		{"no constraint keeps document order", schema.RetrieveRequest{QueryExpression: "//Sales.SalesPoint"}, []string{"p1", "p2", "p3", "p4"}},
		{"string constraint", schema.RetrieveRequest{QueryExpression: "//Sales.SalesPoint[Series = 's-east']"}, []string{"p1", "p2"}},
		{"numeric constraint", schema.RetrieveRequest{QueryExpression: "//Sales.SalesPoint[SortOrder >= 3]"}, []string{"p3", "p4"}},
		{"empty constraint", schema.RetrieveRequest{QueryExpression: "//Sales.SalesPoint[Amount = empty]"}, []string{"p4"}},
		{"sorted ascending", schema.RetrieveRequest{
			QueryExpression: "//Sales.SalesPoint",
			Sort:            []schema.SortSpec{{Attribute: "SortOrder", Direction: schema.SortAsc}},
		}, []string{"p2", "p1", "p4", "p3"}},
		{"sorted descending", schema.RetrieveRequest{
			QueryExpression: "//Sales.SalesSeries",
			Sort:            []schema.SortSpec{{Attribute: "SortOrder", Direction: schema.SortDesc}},
		}, []string{"s-east", "s-west"}},
		{"no match", schema.RetrieveRequest{QueryExpression: "//Sales.SalesPoint[Series = 'nope']"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(t, h, tt.req))
		})
	}
}

func TestFileHostAttributes(t *testing.T) {
	h, _ := newTestHost(t, false)
	records, err := h.Get(context.Background(), schema.RetrieveRequest{QueryExpression: "//Sales.SalesSeries[Id = 's-east']"})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "East", records[0].Get("Name"))
	assert.Equal(t, "#5470c6", records[0].Get("Color"))
	assert.Equal(t, 1, records[0].Get("SortOrder"))
	assert.Nil(t, records[0].Get("Missing"))
}

func TestFileHostProcedure(t *testing.T) {
	h, _ := newTestHost(t, false)

	assert.Equal(t, []string{"p2", "p1"}, ids(t, h, schema.RetrieveRequest{ActionName: "Sales.PointsBySeries", Params: []string{"s-east"}}))
	assert.Equal(t, []string{"s-west", "s-east"}, ids(t, h, schema.RetrieveRequest{ActionName: "Sales.AllSeries", Params: []string{"c1"}}))

	_, err := h.Get(context.Background(), schema.RetrieveRequest{ActionName: "Sales.Missing"})
	assert.ErrorIs(t, err, ErrProcedureNotFound)
}

func TestFileHostErrors(t *testing.T) {
	h, _ := newTestHost(t, false)

	_, err := h.Get(context.Background(), schema.RetrieveRequest{QueryExpression: "//Sales.Unknown"})
	assert.ErrorContains(t, err, "unknown entity")

	_, err = h.Get(context.Background(), schema.RetrieveRequest{QueryExpression: "Sales.SalesPoint["})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = h.Get(ctx, schema.RetrieveRequest{QueryExpression: "//Sales.SalesPoint"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFileHostErrors(t *testing.T) {
	_, err := NewFileHost("", false)
	assert.Error(t, err)

	_, err = NewFileHost(filepath.Join(t.TempDir(), "missing.yaml"), false)
	assert.ErrorContains(t, err, "failed to read host file")

	_, err = NewFileHost(writeDoc(t, "entities: [1, 2"), false)
	assert.ErrorContains(t, err, "failed to parse host file")

	_, err = NewFileHost(writeDoc(t, "procedures:\n  P:\n    reference: x\n"), false)
	assert.ErrorContains(t, err, "has no entity")
}

func TestFileHostSubscriptions(t *testing.T) {
	h, _ := newTestHost(t, false)

	var c1, c2 atomic.Int32
	h1, err := h.Subscribe("c1", func() { c1.Add(1) })
	require.NoError(t, err)
	_, err = h.Subscribe("c2", func() { c2.Add(1) })
	require.NoError(t, err)

	h.Touch("c1")
	assert.Equal(t, int32(1), c1.Load())
	assert.Equal(t, int32(0), c2.Load())

	h.Touch("")
	assert.Equal(t, int32(2), c1.Load())
	assert.Equal(t, int32(1), c2.Load())

	require.NoError(t, h.Unsubscribe(h1))
	h.Touch("c1")
	assert.Equal(t, int32(2), c1.Load())
	assert.Error(t, h.Unsubscribe(h1))

	_, err = h.Subscribe("c1", nil)
	assert.Error(t, err)
}

func TestFileHostExecuteAction(t *testing.T) {
	h, _ := newTestHost(t, false)

	var fired atomic.Int32
	_, err := h.Subscribe("c1", func() { fired.Add(1) })
	require.NoError(t, err)

	require.NoError(t, h.ExecuteAction(context.Background(), "Sales.Refresh", "c1"))
	actions := h.Actions()
	require.Len(t, actions, 1)
	assert.Equal(t, "Sales.Refresh", actions[0].Name)
	assert.Equal(t, "c1", actions[0].RecordID)
	assert.Equal(t, int32(1), fired.Load())

	assert.NoError(t, h.OpenPage(context.Background(), "Sales.Detail", "c1"))
}

func TestFileHostStatus(t *testing.T) {
	h, _ := newTestHost(t, false)
	_, err := h.Subscribe("c1", func() {})
	require.NoError(t, err)

	status, err := h.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "file", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 2, status.Procedures)
	assert.Equal(t, 6, status.TrackedRecords)
	assert.Equal(t, int64(4), status.TableSizes["sales_point"])
	assert.Equal(t, 1, status.ActiveWatches)
	assert.Equal(t, "none", status.NotifierBackend)
}

func TestFileHostReloadsOnChange(t *testing.T) {
	h, path := newTestHost(t, true)

	var fired atomic.Int32
	_, err := h.Subscribe("c1", func() { fired.Add(1) })
	require.NoError(t, err)

	updated := salesDoc + "  Sales.Extra:\n    entity: Sales.SalesPoint\n"
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o644))

	assert.Eventually(t, func() bool { return fired.Load() > 0 }, 5*time.Second, 20*time.Millisecond)
	assert.Eventually(t, func() bool {
		status, _ := h.GetStatus()
		return status.Procedures == 3
	}, 5*time.Second, 20*time.Millisecond)

	status, err := h.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "fsnotify", status.NotifierBackend)
}
