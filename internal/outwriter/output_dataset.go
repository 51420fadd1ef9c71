package outwriter

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// printDataSetTable prints one row per category and one column per series.
func printDataSetTable(out io.Writer, ds schema.ChartDataSet, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(out)

	// --- 1. Define Headers ---
	headers := []string{"X"}
	for _, s := range ds.Series {
		headers = append(headers, seriesLabel(s))
	}
	table.Header(headers)

	// --- 2. Configure Alignment ---
	table.Configure(func(config *tablewriter.Config) {
		config.Row.Alignment.Global = tw.AlignRight
	})

	// --- 3. Prepare Data Rows ---
	categories := ds.Categories()
	labelWidth := GetMaxTableLabelWidth(cfg, len(ds.Series))
	columns := make([][]float64, len(ds.Series))
	present := make([][]bool, len(ds.Series))
	for i, s := range ds.Series {
		columns[i], present[i] = alignedWithNaN(s, categories)
	}

	data := make([][]string, 0, len(categories))
	for row, category := range categories {
		line := []string{contract.TruncateLabel(category, labelWidth)}
		for col := range ds.Series {
			line = append(line, formatCell(columns[col][row], present[col][row], fmtFloat, cfg.UseColors))
		}
		data = append(data, line)
	}

	// --- 4. Render the table ---
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(out, "Collected %d series (%d points) for %s chart of record %s in %v with %d workers. Host backend: %s\n",
		len(ds.Series), ds.PointCount(), ds.Kind, cfg.RecordID, duration, cfg.Workers, cfg.HostBackend)
	return err
}

// alignedWithNaN returns the series values per category. A category the series
// does not contain is absent; a NaN value is present.
func alignedWithNaN(s schema.SeriesResult, categories []string) ([]float64, []bool) {
	values := make([]float64, len(categories))
	present := make([]bool, len(categories))
	for i := range values {
		values[i] = math.NaN()
	}
	for i, slot := range s.Slots(categories) {
		if slot < 0 {
			continue
		}
		values[slot] = s.Points[i].Y
		present[slot] = true
	}
	return values, present
}
