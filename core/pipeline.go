package core

import (
	"context"
	"time"

	"github.com/huangsam/chartwire/internal/contract"
	"github.com/huangsam/chartwire/internal/logging"
	"github.com/huangsam/chartwire/schema"
	"golang.org/x/sync/errgroup"
)

// seriesSlot is one planned fetch of a cycle.
type seriesSlot struct {
	index       int
	name        string
	color       string
	displayMode string
	source      schema.DataSource
	ownerID     string
	xAttr       string
	yAttr       string
}

// Pipeline runs one fetch cycle: plan, fetch, normalize and aggregate.
type Pipeline struct {
	fetcher *Fetcher
}

// NewPipeline creates a pipeline over a host data source.
func NewPipeline(host contract.HostDataSource) *Pipeline {
	return &Pipeline{fetcher: NewFetcher(host)}
}

// Fetcher returns the fetcher used by the pipeline.
func (p *Pipeline) Fetcher() *Fetcher {
	return p.fetcher
}

// Collect fetches every series of the chart for ownerID concurrently and returns
// them in configured order. Static series come first, followed by dynamic series
// in host order. Any failure cancels the remaining fetches and yields an empty dataset.
func (p *Pipeline) Collect(ctx context.Context, cfg *schema.ChartConfig, ownerID string) (schema.ChartDataSet, error) {
	start := time.Now()

	slots, err := p.plan(ctx, cfg, ownerID)
	if err != nil {
		return schema.EmptyDataSet(cfg.Kind), err
	}

	agg, err := NewAggregator(cfg.Kind, len(slots))
	if err != nil {
		return schema.EmptyDataSet(cfg.Kind), err
	}
	coercion := schema.CoercionFor(cfg.Kind)

	g, gctx := errgroup.WithContext(ctx)
	for _, slot := range slots {
		g.Go(func() error {
			records, err := p.fetcher.Fetch(gctx, slot.source, slot.ownerID)
			if err != nil {
				if agg.Fail(err) {
					logging.Warn().Str("series", slot.name).Err(err).Msg("Series fetch failed")
				}
				return err
			}
			_, err = agg.Insert(schema.SeriesResult{
				SeriesIndex: slot.index,
				Name:        slot.name,
				Color:       slot.color,
				DisplayMode: slot.displayMode,
				Points:      Normalize(records, slot.xAttr, slot.yAttr, coercion),
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		agg.Fail(err)
		return schema.EmptyDataSet(cfg.Kind), err
	}

	ds, err := agg.DataSet()
	if err != nil {
		return schema.EmptyDataSet(cfg.Kind), err
	}
	logging.Debug().
		Str("owner", ownerID).
		Int("series", len(ds.Series)).
		Int("points", ds.PointCount()).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("Cycle collected")
	return ds, nil
}

// plan expands the configuration into an ordered list of slot fetches.
// The dynamic series list is retrieved here so the slot count is fixed before fetching starts.
func (p *Pipeline) plan(ctx context.Context, cfg *schema.ChartConfig, ownerID string) ([]seriesSlot, error) {
	slots := make([]seriesSlot, 0, len(cfg.Series))
	for i, s := range cfg.Series {
		slots = append(slots, seriesSlot{
			index:       i,
			name:        s.Name,
			color:       s.Color,
			displayMode: s.DisplayMode,
			source:      s.Source(),
			ownerID:     ownerID,
			xAttr:       s.XAttribute,
			yAttr:       s.YAttribute,
		})
	}

	d := cfg.Dynamic
	if d == nil {
		return slots, nil
	}

	var result FetchResult
	select {
	case result = <-p.fetcher.FetchAsync(ctx, d.Source(), ownerID):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if result.Err != nil {
		return nil, result.Err
	}

	dataSource := d.DataSource()
	for _, r := range result.Records {
		slots = append(slots, seriesSlot{
			index:       len(slots),
			name:        attrText(r, d.NameAttribute),
			color:       attrText(r, d.ColorAttribute),
			displayMode: attrText(r, d.DisplayModeAttribute),
			source:      dataSource,
			ownerID:     r.ID(),
			xAttr:       d.XAttribute,
			yAttr:       d.YAttribute,
		})
	}
	return slots, nil
}

// attrText reads an optional string attribute from a series record.
func attrText(r contract.RawRecord, attr string) string {
	if attr == "" {
		return ""
	}
	return schema.FormatX(r.Get(attr))
}
