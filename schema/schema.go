// Package schema has configs, models and constants for all parts of chartwire.
package schema

import (
	"encoding/json"
	"math"
)

// DataSource is the tagged variant describing where a series comes from.
// It is implemented by QueryPathSource and ProcedureSource only.
type DataSource interface {
	Mode() SourceMode
}

// QueryPathSource retrieves records with a filtered traversal over host entities.
type QueryPathSource struct {
	EntityPath    string // Entity or relationship path, e.g. Sales.Point
	Constraint    string // Optional template containing CurrentObjectToken
	SortAttribute string // Attribute sorted ascending by the host
}

// Mode implements DataSource.
func (QueryPathSource) Mode() SourceMode { return QueryPathMode }

// ProcedureSource retrieves records by invoking a named host procedure.
type ProcedureSource struct {
	Name string
}

// Mode implements DataSource.
func (ProcedureSource) Mode() SourceMode { return ProcedureMode }

// SeriesConfig is one statically configured series.
type SeriesConfig struct {
	Name          string     `json:"name"`
	Mode          SourceMode `json:"mode"`
	EntityPath    string     `json:"entity"`
	Constraint    string     `json:"constraint,omitempty"`
	Procedure     string     `json:"procedure,omitempty"`
	XAttribute    string     `json:"x_attribute"`
	YAttribute    string     `json:"y_attribute"`
	SortAttribute string     `json:"sort_attribute,omitempty"`
	DisplayMode   string     `json:"display_mode,omitempty"`
	Color         string     `json:"color,omitempty"`
}

// Source returns the tagged data source of the series.
func (s SeriesConfig) Source() DataSource {
	if s.Mode == ProcedureMode {
		return ProcedureSource{Name: s.Procedure}
	}
	return QueryPathSource{EntityPath: s.EntityPath, Constraint: s.Constraint, SortAttribute: s.SortAttribute}
}

// DynamicSeriesConfig describes series whose list is itself retrieved from the host.
// Each retrieved series record contributes one series; its points come from
// DataEntityPath records referencing it through DataReference.
type DynamicSeriesConfig struct {
	Mode                 SourceMode `json:"mode"`
	EntityPath           string     `json:"entity"`
	Constraint           string     `json:"constraint,omitempty"`
	Procedure            string     `json:"procedure,omitempty"`
	SortAttribute        string     `json:"sort_attribute,omitempty"`
	NameAttribute        string     `json:"name_attribute"`
	ColorAttribute       string     `json:"color_attribute,omitempty"`
	DisplayModeAttribute string     `json:"display_mode_attribute,omitempty"`
	DataEntityPath       string     `json:"data_entity"`
	DataReference        string     `json:"data_reference"`
	XAttribute           string     `json:"x_attribute"`
	YAttribute           string     `json:"y_attribute"`
	DataSortAttribute    string     `json:"data_sort_attribute,omitempty"`
}

// Source returns the tagged data source of the series list.
func (d DynamicSeriesConfig) Source() DataSource {
	if d.Mode == ProcedureMode {
		return ProcedureSource{Name: d.Procedure}
	}
	return QueryPathSource{EntityPath: d.EntityPath, Constraint: d.Constraint, SortAttribute: d.SortAttribute}
}

// DataSource returns the query path used to fetch the points of one dynamic series.
func (d DynamicSeriesConfig) DataSource() QueryPathSource {
	return QueryPathSource{
		EntityPath:    d.DataEntityPath,
		Constraint:    "[" + d.DataReference + " = '" + CurrentObjectToken + "']",
		SortAttribute: d.DataSortAttribute,
	}
}

// Layout holds the presentation settings handed to the chart adapter.
type Layout struct {
	Title      string     `json:"title,omitempty"`
	XAxisLabel string     `json:"x_axis_label,omitempty"`
	YAxisLabel string     `json:"y_axis_label,omitempty"`
	ShowGrid   bool       `json:"show_grid"`
	ShowLegend bool       `json:"show_legend"`
	BarMode    BarMode    `json:"bar_mode,omitempty"`
	PieType    PieType    `json:"pie_type,omitempty"`
	Width      int        `json:"width"`
	WidthUnit  WidthUnit  `json:"width_unit"`
	Height     int        `json:"height"`
	HeightUnit HeightUnit `json:"height_unit"`
}

// RenderOptions holds rendering behavior that is not part of the layout.
type RenderOptions struct {
	ShowToolbar bool              `json:"show_toolbar"`
	Responsive  bool              `json:"responsive"`
	Style       map[string]string `json:"style,omitempty"`
}

// ClickConfig describes the action run when a chart point is clicked.
type ClickConfig struct {
	Action    ClickAction `json:"action"`
	Page      string      `json:"page,omitempty"`
	Procedure string      `json:"procedure,omitempty"`
}

// ChartConfig is the complete configuration of one chart widget.
type ChartConfig struct {
	Kind    ChartKind            `json:"kind"`
	Series  []SeriesConfig       `json:"series"`
	Dynamic *DynamicSeriesConfig `json:"dynamic,omitempty"`
	Layout  Layout               `json:"layout"`
	Render  RenderOptions        `json:"render"`
	Style   string               `json:"style,omitempty"`
	OnClick ClickConfig          `json:"on_click"`
}

// SortSpec requests the host to order records by an attribute.
type SortSpec struct {
	Attribute string
	Direction SortDirection
}

// RetrieveRequest is a single host retrieval call.
// Exactly one of QueryExpression and ActionName is set.
type RetrieveRequest struct {
	QueryExpression string
	ActionName      string
	Sort            []SortSpec
	Params          []string
}

// SubscriptionHandle identifies an active host subscription.
type SubscriptionHandle string

// NormalizedPoint is one chart coordinate. Y may be NaN.
type NormalizedPoint struct {
	X any     `json:"x"`
	Y float64 `json:"y"`
}

// MarshalJSON writes NaN and infinite y values as null.
func (p NormalizedPoint) MarshalJSON() ([]byte, error) {
	var y *float64
	if !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) {
		y = &p.Y
	}
	return json.Marshal(struct {
		X any      `json:"x"`
		Y *float64 `json:"y"`
	}{X: p.X, Y: y})
}

// SeriesResult is the normalized output of one configured series.
type SeriesResult struct {
	SeriesIndex int               `json:"series_index"`
	Name        string            `json:"name"`
	Color       string            `json:"color,omitempty"`
	DisplayMode string            `json:"display_mode,omitempty"`
	Points      []NormalizedPoint `json:"points"`
}

// ChartDataSet is the ordered set of series handed to the chart adapter.
type ChartDataSet struct {
	Kind   ChartKind      `json:"kind"`
	Series []SeriesResult `json:"series"`
}
