package render

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/chartwire/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataSet(kind schema.ChartKind) schema.ChartDataSet {
	return schema.ChartDataSet{
		Kind: kind,
		Series: []schema.SeriesResult{
			{SeriesIndex: 0, Name: "East", Color: "#5470c6", Points: []schema.NormalizedPoint{
				{X: "Jan", Y: 120}, {X: "Feb", Y: math.NaN()}, {X: "Mar", Y: 143},
			}},
			{SeriesIndex: 1, Name: "West", DisplayMode: "lines", Points: []schema.NormalizedPoint{
				{X: "Feb", Y: 110}, {X: "Apr", Y: 95},
			}},
		},
	}
}

func defaultLayout() schema.Layout {
	return schema.Layout{
		Title:      "Sales",
		ShowGrid:   true,
		ShowLegend: true,
		BarMode:    schema.GroupBars,
		PieType:    schema.PlainPie,
		Width:      100,
		WidthUnit:  schema.PercentageWidth,
		Height:     75,
		HeightUnit: schema.PercentageOfWidthHeight,
	}
}

func TestLineMode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"lines", LinesMode},
		{"markers", MarkersMode},
		{"linesomarkers", LinesMarkersMode},
		{"lines+markers", LinesMarkersMode},
		{"", LinesMarkersMode},
		{" Lines ", LinesMode},
		{"text", LinesMarkersMode},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LineMode(tt.in), tt.in)
	}
}

func TestDimensions(t *testing.T) {
	tests := []struct {
		name          string
		layout        schema.Layout
		width, height string
	}{
		{"percentage of width", schema.Layout{Width: 100, WidthUnit: schema.PercentageWidth, Height: 75, HeightUnit: schema.PercentageOfWidthHeight}, "100%", "75vw"},
		{"half width", schema.Layout{Width: 50, WidthUnit: schema.PercentageWidth, Height: 75, HeightUnit: schema.PercentageOfWidthHeight}, "50%", "37.5vw"},
		{"pixels", schema.Layout{Width: 800, WidthUnit: schema.PixelsWidth, Height: 400, HeightUnit: schema.PixelsHeight}, "800px", "400px"},
		{"pixel width ratio", schema.Layout{Width: 800, WidthUnit: schema.PixelsWidth, Height: 50, HeightUnit: schema.PercentageOfWidthHeight}, "800px", "400px"},
		{"percentage of parent", schema.Layout{Width: 100, WidthUnit: schema.PercentageWidth, Height: 60, HeightUnit: schema.PercentageOfParentHeight}, "100%", "60%"},
		{"zero values use defaults", schema.Layout{}, "100%", "75vw"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := Dimensions(tt.layout)
			assert.Equal(t, tt.width, w)
			assert.Equal(t, tt.height, h)
		})
	}
}

func TestSeriesValues(t *testing.T) {
	ds := sampleDataSet(schema.BarChart)
	categories := ds.Categories()
	assert.Equal(t, []string{"Jan", "Feb", "Mar", "Apr"}, categories)

	assert.Equal(t, []any{120.0, "-", 143.0, "-"}, SeriesValues(ds.Series[0], categories))
	assert.Equal(t, []any{"-", 110.0, "-", 95.0}, SeriesValues(ds.Series[1], categories))
}

func TestBuildRejectsUnknownKind(t *testing.T) {
	_, err := Build("chart", schema.ChartDataSet{Kind: "radar"}, defaultLayout(), schema.RenderOptions{})
	assert.Error(t, err)
}

func TestAdapterDrawKinds(t *testing.T) {
	for _, kind := range []schema.ChartKind{schema.BarChart, schema.LineChart, schema.PieChart} {
		t.Run(string(kind), func(t *testing.T) {
			a := NewEChartsAdapter(t.TempDir())
			layout := defaultLayout()
			layout.BarMode = schema.StackBars
			layout.PieType = schema.DonutPie

			err := a.Draw("sales", sampleDataSet(kind), layout, schema.RenderOptions{
				ShowToolbar: true,
				Responsive:  true,
				Style:       map[string]string{"backgroundColor": "#fafafa"},
			})
			require.NoError(t, err)

			content, err := os.ReadFile(a.Path("sales"))
			require.NoError(t, err)
			page := string(content)
			assert.Contains(t, page, "Sales")
			assert.Contains(t, page, "East")
			assert.Contains(t, page, "#fafafa")
			assert.Equal(t, 1, a.Draws("sales"))
		})
	}
}

func TestAdapterBarStack(t *testing.T) {
	a := NewEChartsAdapter(t.TempDir())
	layout := defaultLayout()
	layout.BarMode = schema.StackBars
	require.NoError(t, a.Draw("sales", sampleDataSet(schema.BarChart), layout, schema.RenderOptions{}))

	content, err := os.ReadFile(a.Path("sales"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"stack":"total"`)
}

func TestAdapterEmptyDataSet(t *testing.T) {
	a := NewEChartsAdapter(t.TempDir())
	require.NoError(t, a.Draw("empty", schema.EmptyDataSet(schema.LineChart), defaultLayout(), schema.RenderOptions{}))
	_, err := os.Stat(a.Path("empty"))
	assert.NoError(t, err)
}

func TestAdapterResizeAndDestroy(t *testing.T) {
	a := NewEChartsAdapter(t.TempDir())
	a.RemoveOnDestroy = true

	assert.Error(t, a.Resize("sales"))

	require.NoError(t, a.Draw("sales", sampleDataSet(schema.LineChart), defaultLayout(), schema.RenderOptions{}))
	require.NoError(t, os.Remove(a.Path("sales")))
	require.NoError(t, a.Resize("sales"))
	_, err := os.Stat(a.Path("sales"))
	assert.NoError(t, err)
	assert.Equal(t, 1, a.Draws("sales"))

	require.NoError(t, a.Destroy("sales"))
	_, err = os.Stat(a.Path("sales"))
	assert.True(t, os.IsNotExist(err))
	assert.Error(t, a.Resize("sales"))

	// Destroying twice is harmless
	assert.NoError(t, a.Destroy("sales"))
}

func TestAdapterAlert(t *testing.T) {
	dir := t.TempDir()
	a := NewEChartsAdapter(filepath.Join(dir, "nested"))

	require.NoError(t, a.Alert("sales", "Configuration error in bar chart:\n\n- Series <East>: broken"))
	content, err := os.ReadFile(a.Path("sales"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Configuration error in bar chart:")
	assert.Contains(t, string(content), "Series &lt;East&gt;: broken")
	assert.Error(t, a.Resize("sales"))
}
