//go:build integration

// Package integration contains integration tests for chartwire.
// These tests are excluded from normal test runs due to build tags.
// To run these tests: go test -tags integration ./integration
package integration

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDemoDataVerification seeds a SQLite host and checks the collected CSV against the seeded rows.
func TestDemoDataVerification(t *testing.T) {
	dir := t.TempDir()
	env := []string{
		"CHARTWIRE_HOST_CONNECT=" + filepath.Join(dir, "host.db"),
		"CHARTWIRE_NOTIFIER=none",
	}
	config := filepath.Join("examples", ".chartwire.yaml")

	_, err := runChartwireCommand(t, env, "host", "seed")
	require.NoError(t, err)

	out, err := runChartwireCommand(t, env, "data", "--config", config, "--output", "csv", "--precision", "0")
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, []string{"series_index", "series", "color", "x", "y"}, rows[0])

	// Line charts parse integers: fractions are cut and exponents are ignored
	got := map[string]string{}
	for _, row := range rows[1:] {
		got[row[1]+"/"+row[3]] = row[4]
	}
	expected := map[string]string{
		"East/Jan": "120", "East/Feb": "98", "East/Mar": "", "East/Apr": "143",
		"West/Jan": "80", "West/Feb": "110", "West/Mar": "95", "West/Apr": "1",
	}
	assert.Equal(t, expected, got)
}

// TestDemoRenderVerification renders the demo chart and checks the HTML output.
func TestDemoRenderVerification(t *testing.T) {
	dir := t.TempDir()
	env := []string{
		"CHARTWIRE_HOST_CONNECT=" + filepath.Join(dir, "host.db"),
		"CHARTWIRE_NOTIFIER=none",
	}
	config := filepath.Join("examples", ".chartwire.yaml")

	_, err := runChartwireCommand(t, env, "host", "seed")
	require.NoError(t, err)

	out, err := runChartwireCommand(t, env, "render", "--config", config, "--output-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Rendered")

	content, err := os.ReadFile(filepath.Join(dir, "sales.html"))
	require.NoError(t, err)
	html := string(content)
	assert.Contains(t, html, "Quarterly sales")
	assert.Contains(t, html, "East")
	assert.Contains(t, html, "#91cc75")
}

// TestFileHostVerification collects the demo file host.
func TestFileHostVerification(t *testing.T) {
	dir := t.TempDir()
	chart := filepath.Join(dir, "chart.yaml")
	require.NoError(t, os.WriteFile(chart, []byte(`
record: c1
chart:
  kind: pie
  series:
    - name: Share
      mode: procedure
      procedure: Sales.PointsByChart
      x-attribute: Month
      y-attribute: Amount
`), 0o644))

	env := []string{
		"CHARTWIRE_HOST_BACKEND=file",
		"CHARTWIRE_HOST_CONNECT=" + filepath.Join("examples", "host.yaml"),
		"CHARTWIRE_NOTIFIER=none",
	}
	out, err := runChartwireCommand(t, env, "data", "--config", chart, "--output", "csv", "--precision", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Share,,Feb,98.6")
	assert.Contains(t, out, "Share,,Mar,\n")
}
