// Package core has the chart pipeline: fetching, normalizing and aggregating
// series, plus the container that keeps a chart in sync with its record.
package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/internal/outwriter"
	"github.com/huangsam/chartwire/internal/render"
)

// ExecutorFunc defines the function signature for executing the chart commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.HostManager) error

// ErrNoHost is returned when a command needs a host before one was initialized.
var ErrNoHost = errors.New("host data source is not initialized")

// ErrNoRecord is returned when a command needs a bound record and none was given.
var ErrNoRecord = errors.New("a record id is required (pass it as an argument or with --record)")

// requireHost returns the host of mgr along with the record check shared by all data commands.
func requireHost(cfg *contract.Config, mgr contract.HostManager) (contract.HostDataSource, error) {
	if cfg.RecordID == "" {
		return nil, ErrNoRecord
	}
	if mgr == nil {
		return nil, ErrNoHost
	}
	host := mgr.GetHost()
	if host == nil {
		return nil, ErrNoHost
	}
	return host, nil
}

// ExecuteRender mounts the chart once, waits for its cycle and writes the HTML chart.
// It serves as the main entry point for the 'render' command.
func ExecuteRender(ctx context.Context, cfg *contract.Config, mgr contract.HostManager) error {
	start := time.Now()
	host, err := requireHost(cfg, mgr)
	if err != nil {
		return err
	}

	adapter := render.NewEChartsAdapter(cfg.OutputDir)
	notifier := outwriter.NewConsoleNotifier(cfg.UseColors)
	c := NewContainer(cfg.Target, host, adapter, notifier)
	if err := c.Mount(ctx, cfg.Chart, cfg.RecordID); err != nil {
		return err
	}
	c.Wait()
	if err := c.Unmount(); err != nil {
		return err
	}

	if alert := ValidateChart(&cfg.Chart); alert != "" {
		outwriter.PrintAlert(os.Stderr, cfg.Target, alert, cfg.UseColors)
		return &ConfigurationError{Message: alert}
	}
	if n := notifier.Count(); n > 0 {
		return fmt.Errorf("chart %s was drawn empty after %d retrieval error(s)", cfg.Target, n)
	}
	fmt.Printf("📊 Rendered %s for record %s in %v\n", adapter.Path(cfg.Target), cfg.RecordID, time.Since(start))
	return nil
}

// ExecuteWatch mounts the chart and keeps redrawing it on record changes until ctx is done.
// It serves as the main entry point for the 'watch' command.
func ExecuteWatch(ctx context.Context, cfg *contract.Config, mgr contract.HostManager) error {
	host, err := requireHost(cfg, mgr)
	if err != nil {
		return err
	}

	adapter := render.NewEChartsAdapter(cfg.OutputDir)
	notifier := outwriter.NewConsoleNotifier(cfg.UseColors)
	c := NewContainer(cfg.Target, host, adapter, notifier)
	if err := c.Mount(ctx, cfg.Chart, cfg.RecordID); err != nil {
		return err
	}
	if alert := ValidateChart(&cfg.Chart); alert != "" {
		outwriter.PrintAlert(os.Stderr, cfg.Target, alert, cfg.UseColors)
	}
	fmt.Printf("👀 Watching record %s (%s notifier). Chart: %s. Press Ctrl+C to stop.\n",
		cfg.RecordID, cfg.Notifier, adapter.Path(cfg.Target))

	<-ctx.Done()
	err = c.Unmount()
	c.Wait()
	fmt.Printf("Stopped after %d draw(s).\n", adapter.Draws(cfg.Target))
	return err
}

// ExecuteData runs a single pipeline cycle and prints the dataset.
// It serves as the main entry point for the 'data' command.
func ExecuteData(ctx context.Context, cfg *contract.Config, mgr contract.HostManager) error {
	start := time.Now()
	host, err := requireHost(cfg, mgr)
	if err != nil {
		return err
	}
	if alert := ValidateChart(&cfg.Chart); alert != "" {
		return &ConfigurationError{Message: alert}
	}

	ds, err := NewPipeline(host).Collect(ctx, &cfg.Chart, cfg.RecordID)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteDataSet(ds, cfg, time.Since(start))
}

// ExecuteClick runs the configured click action against the bound record.
// It serves as the main entry point for the 'click' command.
func ExecuteClick(ctx context.Context, cfg *contract.Config, mgr contract.HostManager) error {
	host, err := requireHost(cfg, mgr)
	if err != nil {
		return err
	}
	if err := RunClickAction(ctx, host, cfg.Chart.OnClick, cfg.RecordID); err != nil {
		return err
	}
	fmt.Printf("Ran %s on record %s\n", cfg.Chart.OnClick.Action, cfg.RecordID)
	return nil
}

// ExecuteValidate prints the configuration message of the chart, if any.
// It serves as the main entry point for the 'validate' command.
func ExecuteValidate(_ context.Context, cfg *contract.Config, _ contract.HostManager) error {
	alert := ValidateChart(&cfg.Chart)
	if alert == "" {
		fmt.Printf("✅ %s chart %s is valid (%d static series, dynamic: %t)\n",
			cfg.Chart.Kind, cfg.Target, len(cfg.Chart.Series), cfg.Chart.Dynamic != nil)
		return nil
	}
	outwriter.PrintAlert(os.Stdout, cfg.Target, alert, cfg.UseColors)
	return &ConfigurationError{Message: alert}
}

// ExecuteStyle parses a style string, or the configured chart style when empty, and prints it.
func ExecuteStyle(cfg *contract.Config, styleText string) error {
	if styleText == "" {
		styleText = cfg.Chart.Style
	}
	return outwriter.PrintStyle(os.Stdout, ParseStyle(styleText), cfg)
}
