// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/internal/parquet"
	"github.com/huangsam/chartwire/schema"
)

// OutWriter provides a unified interface for all output operations.
type OutWriter struct {
	Out io.Writer
}

// NewOutWriter creates a new instance of the output writer on stdout.
func NewOutWriter() *OutWriter {
	return &OutWriter{Out: os.Stdout}
}

// WriteDataSet prints a collected dataset using the configured output format.
func (ow *OutWriter) WriteDataSet(ds schema.ChartDataSet, cfg *contract.Config, duration time.Duration) error {
	return PrintDataSet(ow.Out, ds, cfg, duration)
}

// WriteStatus prints host status as JSON or text.
func (ow *OutWriter) WriteStatus(status schema.HostStatus, cfg *contract.Config, printText func(schema.HostStatus)) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, ow.Out, func(w io.Writer) error {
			return writeJSON(w, status)
		}, "Wrote host status")
	}
	printText(status)
	return nil
}

// PrintDataSet outputs the dataset, dispatching based on the output format configured.
func PrintDataSet(out io.Writer, ds schema.ChartDataSet, cfg *contract.Config, duration time.Duration) error {
	fmtFloat := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		err := writeWithFile(cfg.OutputFile, out, func(w io.Writer) error {
			return writeJSONDataSet(w, ds, cfg.RecordID)
		}, "Wrote JSON dataset")
		if err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		err := writeWithFile(cfg.OutputFile, out, func(w io.Writer) error {
			return writeCSVDataSet(w, ds, fmtFloat)
		}, "Wrote CSV dataset")
		if err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		rows := parquet.FromDataSet(ds, cfg.RecordID, time.Now())
		if err := parquet.WriteSeriesPointsParquet(rows, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote %d points to %s\n", len(rows), cfg.OutputFile)
	default:
		// Default to human-readable table
		if err := printDataSetTable(out, ds, cfg, fmtFloat, duration); err != nil {
			return fmt.Errorf("error writing table output: %w", err)
		}
	}
	return nil
}
