// Package render draws chart datasets as standalone go-echarts HTML pages.
package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/huangsam/chartwire/schema"
)

// Line display modes.
const (
	LinesMode        = "lines"
	MarkersMode      = "markers"
	LinesMarkersMode = "lines+markers" // default
)

// missingValue is what echarts draws as a gap.
const missingValue = "-"

// Renderer is implemented by every go-echarts chart.
type Renderer interface {
	Render(w io.Writer) error
}

// LineMode normalizes a configured display mode. The legacy "linesomarkers"
// spelling maps to lines+markers; unknown modes fall back to the default.
func LineMode(mode string) string {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case LinesMode:
		return LinesMode
	case MarkersMode:
		return MarkersMode
	default:
		return LinesMarkersMode
	}
}

// Dimensions converts the layout size into CSS width and height.
func Dimensions(layout schema.Layout) (width, height string) {
	w := layout.Width
	if w <= 0 {
		w = 100
	}
	h := layout.Height
	if h <= 0 {
		h = 75
	}

	if layout.WidthUnit == schema.PixelsWidth {
		width = fmt.Sprintf("%dpx", w)
	} else {
		width = fmt.Sprintf("%d%%", w)
	}

	switch layout.HeightUnit {
	case schema.PixelsHeight:
		height = fmt.Sprintf("%dpx", h)
	case schema.PercentageOfParentHeight:
		height = fmt.Sprintf("%d%%", h)
	default: // percentage of width
		if layout.WidthUnit == schema.PixelsWidth {
			height = fmt.Sprintf("%dpx", w*h/100)
		} else {
			height = formatVW(float64(w) * float64(h) / 100)
		}
	}
	return width, height
}

func formatVW(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "vw"
}

// Build creates the go-echarts chart for a dataset.
func Build(target string, ds schema.ChartDataSet, layout schema.Layout, render schema.RenderOptions) (Renderer, error) {
	switch ds.Kind {
	case schema.BarChart:
		return buildBar(target, ds, layout, render), nil
	case schema.LineChart:
		return buildLine(target, ds, layout, render), nil
	case schema.PieChart:
		return buildPie(target, ds, layout, render), nil
	default:
		return nil, fmt.Errorf("unsupported chart kind %q", ds.Kind)
	}
}

// globalOptions are shared by every chart kind.
func globalOptions(target string, kind schema.ChartKind, layout schema.Layout, render schema.RenderOptions) []charts.GlobalOpts {
	width, height := Dimensions(layout)
	pageTitle := layout.Title
	if pageTitle == "" {
		pageTitle = target
	}

	trigger := "axis"
	if kind == schema.PieChart {
		trigger = "item"
	}

	global := []charts.GlobalOpts{
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:       pageTitle,
			ChartID:         target,
			Width:           width,
			Height:          height,
			BackgroundColor: render.Style["backgroundColor"],
		}),
		charts.WithTitleOpts(opts.Title{Title: layout.Title}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(layout.ShowLegend)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: trigger}),
	}
	if render.ShowToolbar {
		global = append(global, charts.WithToolboxOpts(opts.Toolbox{
			Show: opts.Bool(true),
			Feature: &opts.ToolBoxFeature{
				SaveAsImage: &opts.ToolBoxFeatureSaveAsImage{Show: opts.Bool(true), Name: target},
			},
		}))
	}
	if kind != schema.PieChart {
		global = append(global,
			charts.WithXAxisOpts(opts.XAxis{Name: layout.XAxisLabel}),
			charts.WithYAxisOpts(opts.YAxis{
				Name:      layout.YAxisLabel,
				SplitLine: &opts.SplitLine{Show: opts.Bool(layout.ShowGrid)},
			}),
		)
	}
	return global
}

// resizeScript keeps the chart sized to its container when the window changes.
func resizeScript(target string) string {
	return fmt.Sprintf("window.addEventListener('resize', function () { goecharts_%s.resize(); });", target)
}

// SeriesValues aligns a series to the categories; gaps become echarts' missing value.
func SeriesValues(s schema.SeriesResult, categories []string) []any {
	values, ok := s.Aligned(categories)
	out := make([]any, len(values))
	for i, v := range values {
		if ok[i] && !math.IsInf(v, 0) {
			out[i] = v
		} else {
			out[i] = missingValue
		}
	}
	return out
}

func buildBar(target string, ds schema.ChartDataSet, layout schema.Layout, render schema.RenderOptions) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(globalOptions(target, ds.Kind, layout, render)...)
	if render.Responsive {
		bar.AddJSFuncStrs(resizeScript(target))
	}

	categories := ds.Categories()
	bar.SetXAxis(categories)
	for _, s := range ds.Series {
		values := SeriesValues(s, categories)
		data := make([]opts.BarData, len(values))
		for i, v := range values {
			data[i] = opts.BarData{Value: v}
		}

		var seriesOpts []charts.SeriesOpts
		if s.Color != "" {
			seriesOpts = append(seriesOpts, charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}))
		}
		if layout.BarMode == schema.StackBars {
			seriesOpts = append(seriesOpts, charts.WithBarChartOpts(opts.BarChart{Stack: "total"}))
		}
		bar.AddSeries(s.Name, data, seriesOpts...)
	}
	return bar
}

func buildLine(target string, ds schema.ChartDataSet, layout schema.Layout, render schema.RenderOptions) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(globalOptions(target, ds.Kind, layout, render)...)
	if render.Responsive {
		line.AddJSFuncStrs(resizeScript(target))
	}

	categories := ds.Categories()
	line.SetXAxis(categories)
	for _, s := range ds.Series {
		values := SeriesValues(s, categories)
		data := make([]opts.LineData, len(values))
		for i, v := range values {
			data[i] = opts.LineData{Value: v}
		}

		mode := LineMode(s.DisplayMode)
		lineStyle := opts.LineStyle{Color: s.Color}
		if mode == MarkersMode {
			lineStyle.Opacity = opts.Float(0)
		}
		seriesOpts := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(mode != LinesMode)}),
			charts.WithLineStyleOpts(lineStyle),
		}
		if s.Color != "" {
			seriesOpts = append(seriesOpts, charts.WithItemStyleOpts(opts.ItemStyle{Color: s.Color}))
		}
		line.AddSeries(s.Name, data, seriesOpts...)
	}
	return line
}

func buildPie(target string, ds schema.ChartDataSet, layout schema.Layout, render schema.RenderOptions) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(globalOptions(target, ds.Kind, layout, render)...)
	if render.Responsive {
		pie.AddJSFuncStrs(resizeScript(target))
	}

	radius := "75%"
	var pieRadius any = radius
	if layout.PieType == schema.DonutPie {
		pieRadius = []string{fmt.Sprintf("%g%%", schema.DonutHole*100), radius}
	}

	// A pie has at most one series
	for _, s := range ds.Series {
		data := make([]opts.PieData, 0, len(s.Points))
		for _, p := range s.Points {
			if math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
				continue
			}
			data = append(data, opts.PieData{Name: schema.FormatX(p.X), Value: p.Y})
		}
		pie.AddSeries(s.Name, data, charts.WithPieChartOpts(opts.PieChart{Radius: pieRadius}))
	}
	return pie
}
