package contract

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/huangsam/chartwire/schema"
	"github.com/spf13/viper"
)

// Default values for configuration.
const (
	DefaultPrecision    = 1
	DefaultWidth        = 100
	DefaultHeight       = 75
	DefaultPollInterval = 2 * time.Second
	DefaultQueryTimeout = 30 * time.Second
	DefaultOutputDir    = "charts"
	DefaultTarget       = "chart"
	DefaultRedisAddr    = "localhost:6379"
)

// DefaultWorkers is the default number of concurrent host queries.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// Config holds the runtime configuration.
// This struct is the "final, validated" config.
type Config struct {
	Chart    schema.ChartConfig
	RecordID string
	Target   string

	HostBackend  schema.DatabaseBackend
	HostConnect  string // Please use env var as this is plaintext
	Notifier     schema.NotifierKind
	PollInterval time.Duration
	QueryTimeout time.Duration
	Workers      int

	RedisAddr     string
	RedisPassword string // Please use env var as this is plaintext
	RedisDB       int

	Output     schema.OutputMode
	OutputFile string
	OutputDir  string
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	LogLevel  string
	LogFormat string
}

// SeriesRawInput holds one series definition from the YAML config file.
type SeriesRawInput struct {
	Name          string `mapstructure:"name"`
	Mode          string `mapstructure:"mode"`
	Entity        string `mapstructure:"entity"`
	Constraint    string `mapstructure:"constraint"`
	Procedure     string `mapstructure:"procedure"`
	XAttribute    string `mapstructure:"x-attribute"`
	YAttribute    string `mapstructure:"y-attribute"`
	SortAttribute string `mapstructure:"sort-attribute"`
	DisplayMode   string `mapstructure:"display-mode"`
	Color         string `mapstructure:"color"`
}

// DynamicRawInput holds the dynamic series definition from the YAML config file.
type DynamicRawInput struct {
	Mode                 string `mapstructure:"mode"`
	Entity               string `mapstructure:"entity"`
	Constraint           string `mapstructure:"constraint"`
	Procedure            string `mapstructure:"procedure"`
	SortAttribute        string `mapstructure:"sort-attribute"`
	NameAttribute        string `mapstructure:"name-attribute"`
	ColorAttribute       string `mapstructure:"color-attribute"`
	DisplayModeAttribute string `mapstructure:"display-mode-attribute"`
	DataEntity           string `mapstructure:"data-entity"`
	DataReference        string `mapstructure:"data-reference"`
	XAttribute           string `mapstructure:"x-attribute"`
	YAttribute           string `mapstructure:"y-attribute"`
	DataSortAttribute    string `mapstructure:"data-sort-attribute"`
}

// ChartRawInput holds the chart widget definition from the YAML config file.
type ChartRawInput struct {
	Kind        string           `mapstructure:"kind"`
	Title       string           `mapstructure:"title"`
	XAxisLabel  string           `mapstructure:"x-axis-label"`
	YAxisLabel  string           `mapstructure:"y-axis-label"`
	ShowGrid    *bool            `mapstructure:"show-grid"`
	ShowLegend  *bool            `mapstructure:"show-legend"`
	ShowToolbar bool             `mapstructure:"show-toolbar"`
	Responsive  *bool            `mapstructure:"responsive"`
	BarMode     string           `mapstructure:"bar-mode"`
	PieType     string           `mapstructure:"pie-type"`
	Width       int              `mapstructure:"width"`
	WidthUnit   string           `mapstructure:"width-unit"`
	Height      int              `mapstructure:"height"`
	HeightUnit  string           `mapstructure:"height-unit"`
	Style       string           `mapstructure:"style"`
	OnClick     string           `mapstructure:"on-click"`
	Page        string           `mapstructure:"page"`
	Procedure   string           `mapstructure:"click-procedure"`
	Series      []SeriesRawInput `mapstructure:"series"`
	Dynamic     *DynamicRawInput `mapstructure:"dynamic"`
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RecordArg string

	// --- Fields from rootCmd.PersistentFlags() ---
	Record        string `mapstructure:"record"`
	Target        string `mapstructure:"target"`
	HostBackend   string `mapstructure:"host-backend"`
	HostConnect   string `mapstructure:"host-connect"`
	Notifier      string `mapstructure:"notifier"`
	PollInterval  string `mapstructure:"poll-interval"`
	QueryTimeout  string `mapstructure:"query-timeout"`
	Workers       int    `mapstructure:"workers"`
	RedisAddr     string `mapstructure:"redis-addr"`
	RedisPassword string `mapstructure:"redis-password"`
	RedisDB       int    `mapstructure:"redis-db"`
	Output        string `mapstructure:"output"`
	OutputFile    string `mapstructure:"output-file"`
	OutputDir     string `mapstructure:"output-dir"`
	Precision     int    `mapstructure:"precision"`
	Width         int    `mapstructure:"width"`
	Color         string `mapstructure:"color"`
	LogLevel      string `mapstructure:"log-level"`
	LogFormat     string `mapstructure:"log-format"`

	// --- Chart definition from config file ---
	Chart ChartRawInput `mapstructure:"chart"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Chart.Series != nil {
		clone.Chart.Series = make([]schema.SeriesConfig, len(c.Chart.Series))
		copy(clone.Chart.Series, c.Chart.Series)
	}
	if c.Chart.Dynamic != nil {
		dynamic := *c.Chart.Dynamic
		clone.Chart.Dynamic = &dynamic
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateHostConfigs(cfg, input); err != nil {
		return err
	}
	if err := processChart(cfg, input); err != nil {
		return err
	}
	return nil
}

// ProcessHostOnly validates only the host settings. It is used by host maintenance commands
// that must work before a chart is configured.
func ProcessHostOnly(cfg *Config, input *ConfigRawInput) error {
	return validateHostConfigs(cfg, input)
}

// ProcessChartText replaces the chart of cfg with a chart definition written in YAML.
// The document is either a full config file with a top-level chart key or the chart keys alone.
// A top-level record key overrides the bound record.
func ProcessChartText(cfg *Config, text string) error {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(strings.NewReader(text)); err != nil {
		return fmt.Errorf("error reading chart config: %w", err)
	}

	input := &ConfigRawInput{}
	var err error
	if v.IsSet("chart") {
		err = v.Unmarshal(input)
	} else {
		err = v.Unmarshal(&input.Chart)
	}
	if err != nil {
		return fmt.Errorf("unable to unmarshal chart config: %w", err)
	}
	if err := processChart(cfg, input); err != nil {
		return err
	}
	if input.Record != "" {
		cfg.RecordID = input.Record
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of connection strings per backend.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return nil
	case schema.FileBackend:
		if connStr == "" {
			return fmt.Errorf("host-connect must point to a YAML file when using %s backend", backend)
		}
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("host-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("host-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateSimpleInputs processes and validates output and logging fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.LogLevel = strings.ToLower(input.LogLevel)
	cfg.LogFormat = strings.ToLower(input.LogFormat)

	cfg.RecordID = input.Record
	if input.RecordArg != "" {
		cfg.RecordID = input.RecordArg
	}

	cfg.Target = input.Target
	if cfg.Target == "" {
		cfg.Target = DefaultTarget
	}
	if !validIdentifier.MatchString(cfg.Target) {
		return fmt.Errorf("invalid target '%s'. must contain only letters, digits and underscores", cfg.Target)
	}

	cfg.OutputDir = input.OutputDir
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	// Parse color flag
	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Precision and Output Validation ---
	if input.Precision < 0 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 0 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for parquet output")
	}

	// --- 2. Log format Validation ---
	switch cfg.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid log format '%s'. must be console or json", input.LogFormat)
	}

	return nil
}

// validateHostConfigs validates host backend and notifier configuration.
func validateHostConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Host Backend Validation ---
	cfg.HostBackend = schema.DatabaseBackend(strings.ToLower(input.HostBackend))
	if cfg.HostBackend == "" {
		cfg.HostBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.HostBackend]; !ok {
		return fmt.Errorf("invalid host backend '%s'. must be sqlite, mysql, postgresql, file", input.HostBackend)
	}
	cfg.HostConnect = input.HostConnect
	if err := ValidateDatabaseConnectionString(cfg.HostBackend, cfg.HostConnect); err != nil {
		return err
	}

	// --- Workers Validation ---
	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	// --- Notifier Validation ---
	cfg.Notifier = schema.NotifierKind(strings.ToLower(input.Notifier))
	if cfg.Notifier == "" {
		cfg.Notifier = schema.PollNotifier
	}
	if _, ok := schema.ValidNotifierKinds[cfg.Notifier]; !ok {
		return fmt.Errorf("invalid notifier '%s'. must be poll, redis, none", input.Notifier)
	}

	var err error
	if cfg.PollInterval, err = parseDurationDefault(input.PollInterval, DefaultPollInterval); err != nil {
		return fmt.Errorf("invalid --poll-interval: %w", err)
	}
	if cfg.QueryTimeout, err = parseDurationDefault(input.QueryTimeout, DefaultQueryTimeout); err != nil {
		return fmt.Errorf("invalid --query-timeout: %w", err)
	}

	cfg.RedisAddr = input.RedisAddr
	if cfg.RedisAddr == "" {
		cfg.RedisAddr = DefaultRedisAddr
	}
	cfg.RedisPassword = input.RedisPassword
	if input.RedisDB < 0 {
		return fmt.Errorf("redis-db must not be negative (received %d)", input.RedisDB)
	}
	cfg.RedisDB = input.RedisDB

	return nil
}

// processChart converts the raw chart definition into schema.ChartConfig.
// Missing procedure names are left for the chart validator to report.
func processChart(cfg *Config, input *ConfigRawInput) error {
	raw := input.Chart
	chart := schema.ChartConfig{Style: raw.Style}

	// --- 1. Kind ---
	chart.Kind = schema.ChartKind(strings.ToLower(raw.Kind))
	if chart.Kind == "" {
		chart.Kind = schema.BarChart
	}
	if _, ok := schema.ValidChartKinds[chart.Kind]; !ok {
		return fmt.Errorf("invalid chart kind '%s'. must be bar, line, pie", raw.Kind)
	}

	// --- 2. Layout ---
	layout := schema.Layout{
		Title:      raw.Title,
		XAxisLabel: raw.XAxisLabel,
		YAxisLabel: raw.YAxisLabel,
		ShowGrid:   boolDefault(raw.ShowGrid, true),
		ShowLegend: boolDefault(raw.ShowLegend, true),
		Width:      raw.Width,
		Height:     raw.Height,
	}
	if layout.Width == 0 {
		layout.Width = DefaultWidth
	}
	if layout.Height == 0 {
		layout.Height = DefaultHeight
	}
	if layout.Width < 0 || layout.Height < 0 {
		return fmt.Errorf("chart width and height must be positive (received %dx%d)", layout.Width, layout.Height)
	}

	var ok bool
	if layout.BarMode, ok = enumDefault(raw.BarMode, schema.GroupBars, schema.ValidBarModes); !ok {
		return fmt.Errorf("invalid bar mode '%s'. must be group, stack", raw.BarMode)
	}
	if layout.PieType, ok = enumDefault(raw.PieType, schema.PlainPie, schema.ValidPieTypes); !ok {
		return fmt.Errorf("invalid pie type '%s'. must be pie, donut", raw.PieType)
	}
	if layout.WidthUnit, ok = enumDefault(raw.WidthUnit, schema.PercentageWidth, schema.ValidWidthUnits); !ok {
		return fmt.Errorf("invalid width unit '%s'. must be percentage, pixels", raw.WidthUnit)
	}
	if layout.HeightUnit, ok = enumDefault(raw.HeightUnit, schema.PercentageOfWidthHeight, schema.ValidHeightUnits); !ok {
		return fmt.Errorf("invalid height unit '%s'. must be percentageOfWidth, pixels, percentageOfParent", raw.HeightUnit)
	}
	chart.Layout = layout
	chart.Render = schema.RenderOptions{
		ShowToolbar: raw.ShowToolbar,
		Responsive:  boolDefault(raw.Responsive, true),
	}

	// --- 3. Click action ---
	action, ok := enumDefault(raw.OnClick, schema.DoNothing, schema.ValidClickActions)
	if !ok {
		return fmt.Errorf("invalid on-click action '%s'. must be doNothing, showPage, callProcedure", raw.OnClick)
	}
	chart.OnClick = schema.ClickConfig{Action: action, Page: raw.Page, Procedure: raw.Procedure}

	// --- 4. Static series ---
	for i, s := range raw.Series {
		mode, ok := enumDefault(s.Mode, schema.QueryPathMode, schema.ValidSourceModes)
		if !ok {
			return fmt.Errorf("invalid mode '%s' for series %d. must be queryPath, procedure", s.Mode, i+1)
		}
		chart.Series = append(chart.Series, schema.SeriesConfig{
			Name:          s.Name,
			Mode:          mode,
			EntityPath:    s.Entity,
			Constraint:    s.Constraint,
			Procedure:     s.Procedure,
			XAttribute:    s.XAttribute,
			YAttribute:    s.YAttribute,
			SortAttribute: s.SortAttribute,
			DisplayMode:   s.DisplayMode,
			Color:         s.Color,
		})
	}

	// --- 5. Dynamic series ---
	if d := raw.Dynamic; d != nil && (d.Entity != "" || d.Procedure != "" || d.Mode != "") {
		mode, ok := enumDefault(d.Mode, schema.QueryPathMode, schema.ValidSourceModes)
		if !ok {
			return fmt.Errorf("invalid mode '%s' for dynamic series. must be queryPath, procedure", d.Mode)
		}
		chart.Dynamic = &schema.DynamicSeriesConfig{
			Mode:                 mode,
			EntityPath:           d.Entity,
			Constraint:           d.Constraint,
			Procedure:            d.Procedure,
			SortAttribute:        d.SortAttribute,
			NameAttribute:        d.NameAttribute,
			ColorAttribute:       d.ColorAttribute,
			DisplayModeAttribute: d.DisplayModeAttribute,
			DataEntityPath:       d.DataEntity,
			DataReference:        d.DataReference,
			XAttribute:           d.XAttribute,
			YAttribute:           d.YAttribute,
			DataSortAttribute:    d.DataSortAttribute,
		}
	}

	if chart.Kind == schema.PieChart && len(chart.Series) > 1 {
		return fmt.Errorf("pie charts take a single series (received %d)", len(chart.Series))
	}

	cfg.Chart = chart
	return nil
}

// parseDurationDefault parses a Go duration string, falling back to def when empty.
func parseDurationDefault(s string, def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive (received %s)", s)
	}
	return d, nil
}

// enumDefault resolves a case-sensitive enum value, using def for empty input.
func enumDefault[T ~string](s string, def T, valid map[T]struct{}) (T, bool) {
	if s == "" {
		return def, true
	}
	v := T(s)
	_, ok := valid[v]
	return v, ok
}

// boolDefault dereferences an optional bool.
func boolDefault(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}
