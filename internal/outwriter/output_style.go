package outwriter

import (
	"fmt"
	"io"
	"slices"

	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/schema"
	"github.com/olekukonko/tablewriter"
)

// PrintStyle outputs a parsed style map as JSON or as a two-column table sorted by property.
func PrintStyle(out io.Writer, style map[string]string, cfg *contract.Config) error {
	if cfg.Output == schema.JSONOut {
		return writeWithFile(cfg.OutputFile, out, func(w io.Writer) error {
			return writeJSON(w, style)
		}, "Wrote style properties")
	}

	keys := make([]string, 0, len(style))
	for k := range style {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	table := tablewriter.NewWriter(out)
	table.Header([]string{"Property", "Value"})
	data := make([][]string, 0, len(keys))
	for _, k := range keys {
		data = append(data, []string{k, style[k]})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "Parsed %d style properties\n", len(keys))
	return err
}
