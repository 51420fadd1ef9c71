package render

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/safehtml"
	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/internal/logging"
	"github.com/huangsam/chartwire/schema"
)

// drawCall is the last dataset drawn into a target.
type drawCall struct {
	data   schema.ChartDataSet
	layout schema.Layout
	render schema.RenderOptions
}

// EChartsAdapter writes each target as <Dir>/<target>.html.
type EChartsAdapter struct {
	Dir             string
	RemoveOnDestroy bool

	mu    sync.Mutex
	last  map[string]drawCall
	draws map[string]int
}

var (
	_ contract.ChartAdapter = &EChartsAdapter{} // Compile-time check
	_ contract.Alerter      = &EChartsAdapter{} // Compile-time check
)

// NewEChartsAdapter creates an adapter writing into dir.
func NewEChartsAdapter(dir string) *EChartsAdapter {
	if dir == "" {
		dir = contract.DefaultOutputDir
	}
	return &EChartsAdapter{
		Dir:   dir,
		last:  make(map[string]drawCall),
		draws: make(map[string]int),
	}
}

// Path returns the HTML file of a target.
func (a *EChartsAdapter) Path(target string) string {
	return filepath.Join(a.Dir, target+".html")
}

// Draw renders the dataset and replaces the target file.
func (a *EChartsAdapter) Draw(target string, data schema.ChartDataSet, layout schema.Layout, render schema.RenderOptions) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.writeLocked(target, data, layout, render); err != nil {
		return err
	}
	a.last[target] = drawCall{data: data, layout: layout, render: render}
	a.draws[target]++
	logging.Debug().Str("target", target).Int("series", len(data.Series)).Str("path", a.Path(target)).Msg("Chart drawn")
	return nil
}

// Resize re-renders the last dataset of the target.
func (a *EChartsAdapter) Resize(target string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	call, ok := a.last[target]
	if !ok {
		return fmt.Errorf("nothing drawn into target %s", target)
	}
	return a.writeLocked(target, call.data, call.layout, call.render)
}

// Destroy forgets the target and removes its file when RemoveOnDestroy is set.
func (a *EChartsAdapter) Destroy(target string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.last, target)
	if !a.RemoveOnDestroy {
		return nil
	}
	if err := os.Remove(a.Path(target)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove chart %s: %w", target, err)
	}
	return nil
}

// Alert replaces the target with a preformatted configuration message.
func (a *EChartsAdapter) Alert(target string, message string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	delete(a.last, target)
	page := fmt.Sprintf(alertPage, safehtml.HTMLEscaped(target), safehtml.HTMLEscaped(message))
	return a.replaceLocked(target, []byte(page))
}

// Draws returns how many times a target has been drawn.
func (a *EChartsAdapter) Draws(target string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.draws[target]
}

func (a *EChartsAdapter) writeLocked(target string, data schema.ChartDataSet, layout schema.Layout, render schema.RenderOptions) error {
	chart, err := Build(target, data, layout, render)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		return fmt.Errorf("failed to render chart %s: %w", target, err)
	}
	return a.replaceLocked(target, buf.Bytes())
}

// replaceLocked writes through a temp file so readers never see a partial page.
func (a *EChartsAdapter) replaceLocked(target string, content []byte) error {
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", a.Dir, err)
	}
	path := a.Path(target)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("failed to write chart %s: %w", target, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write chart %s: %w", target, err)
	}
	return nil
}

const alertPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%s</title></head>
<body>
<div class="alert alert-danger"><pre>%s</pre></div>
</body>
</html>
`
