package hostdb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/huangsam/chartwire/internal/logging"
)

// DemoChartID is the record seeded by SeedDemo.
const DemoChartID = "c1"

// Procedures registered by SeedDemo.
const (
	DemoPointsProcedure = "Sales.PointsByChart"
	DemoSeriesProcedure = "Sales.SeriesByChart"
	DemoViewProcedure   = "Sales.MarkViewed"
)

var demoTables = []string{
	`CREATE TABLE IF NOT EXISTS sales_chart (
		id VARCHAR(64) NOT NULL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		views INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS sales_series (
		id VARCHAR(64) NOT NULL PRIMARY KEY,
		chart VARCHAR(64) NOT NULL,
		name VARCHAR(255) NOT NULL,
		color VARCHAR(32),
		display_mode VARCHAR(32),
		sort_order INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sales_point (
		id VARCHAR(64) NOT NULL PRIMARY KEY,
		chart VARCHAR(64) NOT NULL,
		series VARCHAR(64) NOT NULL,
		month VARCHAR(32) NOT NULL,
		amount VARCHAR(32),
		sort_order INTEGER NOT NULL
	)`,
}

type demoSeries struct {
	id, name, color, displayMode string
}

var demoSeriesRows = []demoSeries{
	{id: "s-east", name: "East", color: "#5470c6", displayMode: "line"},
	{id: "s-west", name: "West", color: "#91cc75", displayMode: "line"},
}

var demoMonths = []string{"Jan", "Feb", "Mar", "Apr"}

var demoAmounts = map[string][]string{
	"s-east": {"120", "98.6", "n/a", "143"},
	"s-west": {"80", "110", "95", "1e2"},
}

var demoProcedures = map[string]string{
	DemoPointsProcedure: "SELECT * FROM sales_point WHERE chart = ? ORDER BY series, sort_order",
	DemoSeriesProcedure: "SELECT * FROM sales_series WHERE chart = ? ORDER BY sort_order",
	DemoViewProcedure:   "UPDATE sales_chart SET views = views + 1 WHERE id = ?",
}

// SeedDemo creates the demo sales tables and procedures and fills them for DemoChartID.
// Running it again replaces the demo rows.
func SeedDemo(ctx context.Context, h *SQLHost) error {
	for _, stmt := range demoTables {
		if _, err := h.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create demo table: %w", err)
		}
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := h.seedRows(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit demo data: %w", err)
	}

	logging.Info().Str("chart", DemoChartID).Int("series", len(demoSeriesRows)).Msg("Seeded demo data")
	return nil
}

func (h *SQLHost) seedRows(ctx context.Context, tx *sql.Tx) error {
	exec := func(stmt string, args ...any) error {
		bound, _ := rebind(stmt, h.backend)
		if _, err := tx.ExecContext(ctx, bound, args...); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
		return nil
	}

	for _, table := range []string{"sales_point", "sales_series", "sales_chart"} {
		if err := exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, chartColumn(table)), DemoChartID); err != nil {
			return err
		}
	}
	if err := exec("INSERT INTO sales_chart (id, title, views) VALUES (?, ?, 0)", DemoChartID, "Quarterly sales"); err != nil {
		return err
	}

	for i, s := range demoSeriesRows {
		if err := exec("INSERT INTO sales_series (id, chart, name, color, display_mode, sort_order) VALUES (?, ?, ?, ?, ?, ?)",
			s.id, DemoChartID, s.name, s.color, s.displayMode, i); err != nil {
			return err
		}
		for j, month := range demoMonths {
			id := fmt.Sprintf("%s-%d", s.id, j)
			if err := exec("INSERT INTO sales_point (id, chart, series, month, amount, sort_order) VALUES (?, ?, ?, ?, ?, ?)",
				id, DemoChartID, s.id, month, demoAmounts[s.id][j], j); err != nil {
				return err
			}
		}
	}

	for name, body := range demoProcedures {
		if err := exec(fmt.Sprintf("DELETE FROM %s WHERE name = ?", proceduresTable), name); err != nil {
			return err
		}
		if err := exec(fmt.Sprintf("INSERT INTO %s (name, body) VALUES (?, ?)", proceduresTable), name, body); err != nil {
			return err
		}
	}
	return nil
}

func chartColumn(table string) string {
	if table == "sales_chart" {
		return "id"
	}
	return "chart"
}

// RegisterProcedure stores or replaces a named procedure body.
func (h *SQLHost) RegisterProcedure(ctx context.Context, name, body string) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	del, _ := rebind(fmt.Sprintf("DELETE FROM %s WHERE name = ?", proceduresTable), h.backend)
	if _, err := tx.ExecContext(ctx, del, name); err != nil {
		return fmt.Errorf("failed to register procedure %s: %w", name, err)
	}
	ins, _ := rebind(fmt.Sprintf("INSERT INTO %s (name, body) VALUES (?, ?)", proceduresTable), h.backend)
	if _, err := tx.ExecContext(ctx, ins, name, body); err != nil {
		return fmt.Errorf("failed to register procedure %s: %w", name, err)
	}
	return tx.Commit()
}
