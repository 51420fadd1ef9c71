package schema

// Custom string types for type safety.
type (
	// ChartKind represents the widget family being rendered.
	ChartKind string

	// SourceMode represents how a series retrieves its records from the host.
	SourceMode string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the storage backend of the host data source.
	DatabaseBackend string

	// NotifierKind represents how record change notifications are delivered.
	NotifierKind string

	// BarMode represents how multiple bar series share a category.
	BarMode string

	// PieType represents the pie variant.
	PieType string

	// WidthUnit represents the unit of the configured chart width.
	WidthUnit string

	// HeightUnit represents the unit of the configured chart height.
	HeightUnit string

	// ClickAction represents what happens when a chart point is clicked.
	ClickAction string

	// SortDirection represents the order requested from the host.
	SortDirection string

	// Coercion represents the numeric parse applied to y values.
	Coercion int
)

// All chart kinds supported.
const (
	BarChart  ChartKind = "bar"
	LineChart ChartKind = "line"
	PieChart  ChartKind = "pie"
)

// All source modes supported.
const (
	QueryPathMode SourceMode = "queryPath" // default
	ProcedureMode SourceMode = "procedure"
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All host backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	FileBackend       DatabaseBackend = "file"
)

// All notifier kinds supported.
const (
	PollNotifier  NotifierKind = "poll" // default
	RedisNotifier NotifierKind = "redis"
	NoneNotifier  NotifierKind = "none"
)

// All bar modes supported.
const (
	GroupBars BarMode = "group" // default
	StackBars BarMode = "stack"
)

// All pie types supported.
const (
	PlainPie PieType = "pie" // default
	DonutPie PieType = "donut"
)

// All width units supported.
const (
	PercentageWidth WidthUnit = "percentage" // default
	PixelsWidth     WidthUnit = "pixels"
)

// All height units supported.
const (
	PercentageOfWidthHeight  HeightUnit = "percentageOfWidth" // default
	PixelsHeight             HeightUnit = "pixels"
	PercentageOfParentHeight HeightUnit = "percentageOfParent"
)

// All click actions supported.
const (
	DoNothing     ClickAction = "doNothing" // default
	ShowPage      ClickAction = "showPage"
	CallProcedure ClickAction = "callProcedure"
)

// Sort directions understood by hosts.
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Numeric coercions applied by the normalizer.
const (
	IntegerCoercion Coercion = iota // bar and line
	FloatCoercion                   // pie
)

// CurrentObjectToken is replaced with the owner record id in constraint templates.
const CurrentObjectToken = "[%CurrentObject%]"

// DonutHole is the inner radius ratio of a donut chart.
const DonutHole = 0.4

// ValidChartKinds lists all valid chart kinds.
var ValidChartKinds = map[ChartKind]struct{}{
	BarChart:  {},
	LineChart: {},
	PieChart:  {},
}

// ValidSourceModes lists all valid source modes.
var ValidSourceModes = map[SourceMode]struct{}{
	QueryPathMode: {},
	ProcedureMode: {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid host backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	FileBackend:       {},
}

// ValidNotifierKinds lists all valid notifier kinds.
var ValidNotifierKinds = map[NotifierKind]struct{}{
	PollNotifier:  {},
	RedisNotifier: {},
	NoneNotifier:  {},
}

// ValidBarModes lists all valid bar modes.
var ValidBarModes = map[BarMode]struct{}{
	GroupBars: {},
	StackBars: {},
}

// ValidPieTypes lists all valid pie types.
var ValidPieTypes = map[PieType]struct{}{
	PlainPie: {},
	DonutPie: {},
}

// ValidWidthUnits lists all valid width units.
var ValidWidthUnits = map[WidthUnit]struct{}{
	PercentageWidth: {},
	PixelsWidth:     {},
}

// ValidHeightUnits lists all valid height units.
var ValidHeightUnits = map[HeightUnit]struct{}{
	PercentageOfWidthHeight:  {},
	PixelsHeight:             {},
	PercentageOfParentHeight: {},
}

// ValidClickActions lists all valid click actions.
var ValidClickActions = map[ClickAction]struct{}{
	DoNothing:     {},
	ShowPage:      {},
	CallProcedure: {},
}

// CoercionFor returns the y coercion used by a chart kind.
func CoercionFor(kind ChartKind) Coercion {
	if kind == PieChart {
		return FloatCoercion
	}
	return IntegerCoercion
}
