// Package parquet exports chart datasets to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/huangsam/chartwire/schema"
	"github.com/parquet-go/parquet-go"
)

// SeriesPoint is one normalized chart point in long format.
type SeriesPoint struct {
	// RecordID is the owner record the chart was collected for
	RecordID string `parquet:"record_id,snappy"`

	// ChartKind is bar, line or pie
	ChartKind string `parquet:"chart_kind,snappy"`

	// SeriesIndex is the configured position of the series
	SeriesIndex int32 `parquet:"series_index,snappy"`

	// SeriesName is the series label (may be empty)
	SeriesName string `parquet:"series_name,snappy"`

	// SeriesColor is the configured series color (nullable)
	SeriesColor *string `parquet:"series_color,optional,snappy"`

	// X is the category label of the point
	X string `parquet:"x,snappy"`

	// Y is the coerced value; NaN is stored as null
	Y *float64 `parquet:"y,optional,snappy"`

	// CollectedAt is when the cycle finished
	CollectedAt time.Time `parquet:"collected_at,snappy"`
}

// FromDataSet flattens a dataset into rows in series and point order.
func FromDataSet(ds schema.ChartDataSet, recordID string, collectedAt time.Time) []SeriesPoint {
	rows := make([]SeriesPoint, 0, ds.PointCount())
	for _, s := range ds.Series {
		var color *string
		if s.Color != "" {
			c := s.Color
			color = &c
		}
		for _, p := range s.Points {
			var y *float64
			if !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) {
				v := p.Y
				y = &v
			}
			rows = append(rows, SeriesPoint{
				RecordID:    recordID,
				ChartKind:   string(ds.Kind),
				SeriesIndex: int32(s.SeriesIndex),
				SeriesName:  s.Name,
				SeriesColor: color,
				X:           schema.FormatX(p.X),
				Y:           y,
				CollectedAt: collectedAt,
			})
		}
	}
	return rows
}

// WriteSeriesPointsParquet writes a slice of SeriesPoint structs to a Parquet file.
func WriteSeriesPointsParquet(data []SeriesPoint, outputPath string) error {
	// Create the output file
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is automatically derived from the SeriesPoint struct tags
	writer := parquet.NewGenericWriter[SeriesPoint](file)

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish parquet file: %w", err)
	}
	return nil
}
