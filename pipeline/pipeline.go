// Package pipeline связывает конфигурацию, схему, загрузку и анализ в шаги командной строки.
package pipeline

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"adventureworks/analysis"
	"adventureworks/chart"
	"adventureworks/config"
	"adventureworks/csvparser"
	"adventureworks/database"
	"adventureworks/frame"
	"adventureworks/parser"
	"adventureworks/report"
)

const (
	ProfitChartFile  = "top_product_profit.svg"
	RegionsChartFile = "monthly_region_profit.svg"
)

type Runner struct {
	cfg       *config.Config
	db        *sql.DB
	out       io.Writer
	tables    []database.Table
	relations []database.Relation
}

// New создает Runner и разбирает схему: файл из конфигурации или встроенный DDL
func New(cfg *config.Config, db *sql.DB, out io.Writer) (*Runner, error) {
	tables, relations, err := SchemaDefinition(cfg.Paths.SchemaFile)
	if err != nil {
		return nil, err
	}
	return &Runner{cfg: cfg, db: db, out: out, tables: tables, relations: relations}, nil
}

// SchemaDefinition возвращает таблицы и связи
func SchemaDefinition(schemaFile string) ([]database.Table, []database.Relation, error) {
	if schemaFile == "" {
		return parser.ParseSQLSchemaText(database.AdventureWorksDDL),
			parser.ParseRelationsText(database.AdventureWorksDDL), nil
	}
	tables, err := parser.ParseSQLSchema(schemaFile)
	if err != nil {
		return nil, nil, fmt.Errorf("parse schema %s: %w", schemaFile, err)
	}
	relations, err := parser.ParseRelations(schemaFile)
	if err != nil {
		return nil, nil, fmt.Errorf("parse relations %s: %w", schemaFile, err)
	}
	if len(tables) == 0 {
		return nil, nil, fmt.Errorf("no tables found in %s", schemaFile)
	}
	return tables, relations, nil
}

// Schema генерирует DDL и применяет его
func (r *Runner) Schema(ctx context.Context) error {
	var buf bytes.Buffer
	if err := database.GenerateSchema(&buf, r.tables, r.relations, r.cfg.Database.Schema, r.cfg.Load.DropExisting); err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}
	// Записанный скрипт применяется из файла, чтобы в базе было ровно то, что лежит на диске
	if path := r.cfg.Paths.OutputSQLFile; path != "" {
		if err := database.WriteSchemaFile(path, buf.String()); err != nil {
			return fmt.Errorf("write schema file: %w", err)
		}
		log.Ctx(ctx).Info().Str("file", path).Msg("schema script written")
		if err := database.ExecuteSQLFile(ctx, r.db, path); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	} else if err := database.ExecuteSQL(ctx, r.db, buf.String()); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	log.Ctx(ctx).Info().Int("tables", len(r.tables)).Msg("schema created")
	return nil
}

// Load проверяет CSV-файлы и загружает их
func (r *Runner) Load(ctx context.Context) error {
	files := r.cfg.CSVFiles()
	if r.cfg.Load.Mode == database.LoadModeClient {
		infos, err := csvparser.AnalyzeCSVFiles(ctx, files, r.cfg.Load.Workers)
		if err != nil {
			return fmt.Errorf("analyze csv: %w", err)
		}
		if err := csvparser.CheckColumns(r.tables, infos); err != nil {
			return err
		}
	}

	if _, err := database.ImportCSV(ctx, r.db, r.tables, r.relations, files, r.cfg.Database.Schema, r.cfg.Load.Mode); err != nil {
		return err
	}

	counts, err := database.RowCounts(ctx, r.db, r.tables, r.cfg.Database.Schema)
	if err != nil {
		return err
	}
	ev := log.Ctx(ctx).Info()
	for table, n := range counts {
		ev = ev.Int64(table, n)
	}
	ev.Msg("data import completed")
	return nil
}

// Report выполняет аналитические запросы и печатает результаты
func (r *Runner) Report(ctx context.Context) error {
	a := analysis.New(r.db, r.cfg.Report.Limit)
	if err := a.CreateViews(ctx); err != nil {
		return err
	}

	queries := []struct {
		title string
		run   func(context.Context) (*frame.Frame, error)
	}{
		{"Top products by quantity sold", a.TopProductsByQuantity},
		{"Top products by profit", a.TopProductsByProfit},
		{"Top spending customers", a.TopSpendingCustomers},
		{"Product rank by quantity within category", a.RankProductsByQuantity},
		{"Region rank by monthly profit", a.RankRegionsByMonthlyProfit},
		{"Product return rates", a.ReturnRates},
	}
	for _, q := range queries {
		f, err := q.run(ctx)
		if err != nil {
			return err
		}
		report.Render(r.out, q.title, f)
	}

	corr, err := a.SpendingCorrelation(ctx)
	if err != nil {
		return err
	}
	report.RenderCorrelation(r.out, corr)
	return nil
}

// Charts рисует прибыль по товарам и помесячную прибыль по регионам
func (r *Runner) Charts(ctx context.Context) error {
	a := analysis.New(r.db, r.cfg.Report.Limit)
	if err := a.CreateViews(ctx); err != nil {
		return err
	}
	if err := os.MkdirAll(r.cfg.Paths.ChartsDir, 0o755); err != nil {
		return fmt.Errorf("create charts dir: %w", err)
	}

	profits, err := a.TopProductsByProfit(ctx)
	if err != nil {
		return err
	}
	labels, values, err := chart.BarsFromFrame(profits, "product_name", "total_profit")
	if err != nil {
		return err
	}
	if err := r.writeChart(ctx, ProfitChartFile, func(w io.Writer) error {
		return chart.Bar(w, fmt.Sprintf("Top %d products by profit", len(labels)), labels, values)
	}); err != nil {
		return err
	}

	monthly, err := a.MonthlyRegionalProfit(ctx)
	if err != nil {
		return err
	}
	months, series, err := chart.SeriesFromFrame(monthly, "month", "region", "profit")
	if err != nil {
		return err
	}
	return r.writeChart(ctx, RegionsChartFile, func(w io.Writer) error {
		return chart.Lines(w, "Monthly profit by region", months, series)
	})
}

// Run выполняет все шаги последовательно
func (r *Runner) Run(ctx context.Context) error {
	for _, step := range []func(context.Context) error{r.Schema, r.Load, r.Report, r.Charts} {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) writeChart(ctx context.Context, name string, render func(io.Writer) error) error {
	path := filepath.Join(r.cfg.Paths.ChartsDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return fmt.Errorf("render chart %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("file", path).Msg("chart written")
	return nil
}
