package core

import (
	"fmt"
	"strings"

	"github.com/huangsam/chartwire/schema"
)

// ValidateChart checks a chart configuration and returns a user-facing message.
// An empty string means the configuration is valid.
// The only rule reported is a procedure data source with no procedure name.
func ValidateChart(cfg *schema.ChartConfig) string {
	var diagnostics []string

	for i, s := range cfg.Series {
		if s.Mode == schema.ProcedureMode && s.Procedure == "" {
			diagnostics = append(diagnostics, fmt.Sprintf(
				"- Series %s: 'Data source' is set to 'Procedure' but 'Procedure' is missing", seriesLabel(s.Name, i)))
		}
	}
	if d := cfg.Dynamic; d != nil && d.Mode == schema.ProcedureMode && d.Procedure == "" {
		diagnostics = append(diagnostics,
			"- Dynamic series: 'Data source' is set to 'Procedure' but 'Procedure' is missing")
	}

	if len(diagnostics) == 0 {
		return ""
	}
	return fmt.Sprintf("Configuration error in %s chart:\n\n%s", cfg.Kind, strings.Join(diagnostics, "\n"))
}

// seriesLabel names a static series by its name, or by its 1-based position when unnamed.
func seriesLabel(name string, index int) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("#%d", index+1)
}
