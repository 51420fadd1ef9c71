package outwriter

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/huangsam/chartwire/schema"
)

// dataSetOutput is the JSON document of a collected dataset.
type dataSetOutput struct {
	RecordID string                `json:"record_id"`
	Kind     schema.ChartKind      `json:"kind"`
	Series   []schema.SeriesResult `json:"series"`
}

// writeJSONDataSet marshals the dataset to JSON and writes it.
func writeJSONDataSet(w io.Writer, ds schema.ChartDataSet, recordID string) error {
	series := ds.Series
	if series == nil {
		series = []schema.SeriesResult{}
	}
	return writeJSON(w, dataSetOutput{RecordID: recordID, Kind: ds.Kind, Series: series})
}

// writeCSVDataSet writes the dataset in long format, one row per point.
func writeCSVDataSet(w io.Writer, ds schema.ChartDataSet, fmtFloat func(float64) string) error {
	header := []string{"series_index", "series", "color", "x", "y"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range ds.Series {
			for _, p := range s.Points {
				row := []string{
					strconv.Itoa(s.SeriesIndex),
					s.Name,
					s.Color,
					schema.FormatX(p.X),
					fmtFloat(p.Y),
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
