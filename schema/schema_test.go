package schema

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizedPointMarshalNaN(t *testing.T) {
	data, err := json.Marshal([]NormalizedPoint{{X: "Jan", Y: 10}, {X: "Feb", Y: math.NaN()}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"x":"Jan","y":10},{"x":"Feb","y":null}]`, string(data))
}

func TestSeriesConfigSource(t *testing.T) {
	qp := SeriesConfig{Mode: QueryPathMode, EntityPath: "Sales.Point", Constraint: "[a = 'b']", SortAttribute: "pos"}
	assert.Equal(t, QueryPathSource{EntityPath: "Sales.Point", Constraint: "[a = 'b']", SortAttribute: "pos"}, qp.Source())

	proc := SeriesConfig{Mode: ProcedureMode, Procedure: "Sales.Points"}
	assert.Equal(t, ProcedureSource{Name: "Sales.Points"}, proc.Source())

	// Unset mode defaults to query path.
	assert.Equal(t, QueryPathMode, SeriesConfig{}.Source().Mode())
}

func TestDynamicDataSource(t *testing.T) {
	d := DynamicSeriesConfig{DataEntityPath: "Sales.Point", DataReference: "Sales.Point_Series", DataSortAttribute: "position"}
	src := d.DataSource()
	assert.Equal(t, "Sales.Point", src.EntityPath)
	assert.Equal(t, "[Sales.Point_Series = '[%CurrentObject%]']", src.Constraint)
	assert.Equal(t, "position", src.SortAttribute)
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"month":              "month",
		"Sales.Point_Chart":  "point_chart",
		"SalesPoint":         "sales_point",
		"HTTPCode":           "http_code",
		"Module.Entity.Attr": "attr",
		"sortOrder":          "sort_order",
	}
	for in, want := range tests {
		assert.Equal(t, want, SnakeCase(in), in)
	}
}

func TestMapRecordGet(t *testing.T) {
	r := NewMapRecord("7", map[string]any{"point_chart": "c1", "Amount": 3})
	assert.Equal(t, "7", r.ID())
	assert.Equal(t, "c1", r.Get("Sales.Point_Chart"))
	assert.Equal(t, 3, r.Get("Amount"))
	assert.Nil(t, r.Get("missing"))
}

func TestCategoriesAndAligned(t *testing.T) {
	ds := ChartDataSet{Series: []SeriesResult{
		{Points: []NormalizedPoint{{X: "Jan", Y: 1}, {X: "Feb", Y: 2}}},
		{Points: []NormalizedPoint{{X: "Mar", Y: 3}, {X: "Jan", Y: math.NaN()}}},
	}}
	cats := ds.Categories()
	assert.Equal(t, []string{"Jan", "Feb", "Mar"}, cats)
	assert.Equal(t, 4, ds.PointCount())

	values, ok := ds.Series[1].Aligned(cats)
	assert.Equal(t, []bool{false, false, true}, ok)
	assert.Equal(t, 3.0, values[2])
}

func TestCategoriesKeepRepeatedLabels(t *testing.T) {
	ds := ChartDataSet{Series: []SeriesResult{
		{Points: []NormalizedPoint{{X: "Jan", Y: 1}, {X: "Jan", Y: 2}, {X: "Feb", Y: 3}}},
		{Points: []NormalizedPoint{{X: "Feb", Y: 4}, {X: "Jan", Y: 5}, {X: "Mar", Y: 6}}},
	}}
	cats := ds.Categories()
	assert.Equal(t, []string{"Jan", "Jan", "Feb", "Mar"}, cats)

	values, ok := ds.Series[0].Aligned(cats)
	assert.Equal(t, []float64{1, 2, 3, 0}, values)
	assert.Equal(t, []bool{true, true, true, false}, ok)

	assert.Equal(t, []int{2, 0, 3}, ds.Series[1].Slots(cats))
	assert.Equal(t, []int{-1}, SeriesResult{Points: []NormalizedPoint{{X: "Apr"}}}.Slots(cats))
}
