package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// AdventureWorksDDL DDL таблиц Adventure Works
//
//go:embed schema.sql
var AdventureWorksDDL string

// GenerateSchema создает DDL для таблиц в порядке зависимостей
func GenerateSchema(w io.Writer, tables []Table, relations []Relation, schemaName string, dropExisting bool) error {
	order, err := LoadOrder(tables, relations)
	if err != nil {
		return err
	}
	schema := pq.QuoteIdentifier(schemaName)

	fmt.Fprintf(w, "-- adventure works schema\nCREATE SCHEMA IF NOT EXISTS %s;\n\n", schema)

	if dropExisting {
		// DROP существующих таблиц
		fmt.Fprintln(w, "-- Drop existing tables (if any) in reverse dependency order")
		for i := len(order) - 1; i >= 0; i-- {
			fmt.Fprintf(w, "DROP TABLE IF EXISTS %s.%s CASCADE;\n", schema, pq.QuoteIdentifier(order[i].Name))
		}
		fmt.Fprintln(w)
	}

	// CREATE TABLE
	for _, t := range order {
		if len(t.Columns) == 0 {
			return fmt.Errorf("table %s has no columns", t.Name)
		}
		fmt.Fprintf(w, "CREATE TABLE %s.%s (\n", schema, pq.QuoteIdentifier(t.Name))

		var pk []string
		for _, c := range t.Columns {
			if c.PrimaryKey {
				pk = append(pk, pq.QuoteIdentifier(c.Name))
			}
		}
		for i, c := range t.Columns {
			comma := ""
			if i+1 < len(t.Columns) || len(pk) > 0 {
				comma = ","
			}
			fmt.Fprintf(w, "    %s %s%s\n", pq.QuoteIdentifier(c.Name), c.Type, comma)
		}
		if len(pk) > 0 {
			fmt.Fprintf(w, "    PRIMARY KEY (%s)\n", strings.Join(pk, ", "))
		}
		fmt.Fprintln(w, ");")
		fmt.Fprintln(w)
	}

	// ALTER TABLE … FOREIGN KEY
	known := make(map[string]Table, len(tables))
	for _, t := range tables {
		known[t.Name] = t
	}
	seen := map[string]struct{}{}
	fmt.Fprintln(w, "-- Add foreign key constraints")
	for _, r := range relations {
		if _, dup := seen[r.ConstraintName]; dup {
			continue
		}
		if !hasColumn(known[r.SourceTable], r.SourceColumn) || !hasColumn(known[r.TargetTable], r.TargetColumn) {
			return fmt.Errorf("relation %s references unknown column", r.ConstraintName)
		}
		fmt.Fprintf(w,
			"ALTER TABLE %s.%s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s.%s(%s);\n",
			schema, pq.QuoteIdentifier(r.SourceTable),
			pq.QuoteIdentifier(r.ConstraintName),
			pq.QuoteIdentifier(r.SourceColumn),
			schema, pq.QuoteIdentifier(r.TargetTable), pq.QuoteIdentifier(r.TargetColumn),
		)
		seen[r.ConstraintName] = struct{}{}
	}
	return nil
}

// WriteSchemaFile сохраняет сгенерированный DDL в файл
func WriteSchemaFile(path, ddl string) error {
	return os.WriteFile(path, []byte(ddl), 0o644)
}

// LoadOrder сортирует таблицы топологически: родительские таблицы раньше дочерних.
// При равенстве сохраняется порядок объявления.
func LoadOrder(tables []Table, relations []Relation) ([]Table, error) {
	index := make(map[string]int, len(tables))
	for i, t := range tables {
		index[t.Name] = i
	}

	deps := make(map[string]map[string]struct{}, len(tables))
	for _, r := range relations {
		if _, ok := index[r.SourceTable]; !ok {
			return nil, fmt.Errorf("relation %s: unknown table %s", r.ConstraintName, r.SourceTable)
		}
		if _, ok := index[r.TargetTable]; !ok {
			return nil, fmt.Errorf("relation %s: unknown table %s", r.ConstraintName, r.TargetTable)
		}
		if r.SourceTable == r.TargetTable {
			continue
		}
		if deps[r.SourceTable] == nil {
			deps[r.SourceTable] = map[string]struct{}{}
		}
		deps[r.SourceTable][r.TargetTable] = struct{}{}
	}

	done := make(map[string]bool, len(tables))
	order := make([]Table, 0, len(tables))
	for len(order) < len(tables) {
		var ready []int
		for i, t := range tables {
			if done[t.Name] {
				continue
			}
			blocked := false
			for dep := range deps[t.Name] {
				if !done[dep] {
					blocked = true
					break
				}
			}
			if !blocked {
				ready = append(ready, i)
			}
		}
		if len(ready) == 0 {
			return nil, ErrCyclicRelations
		}
		sort.Ints(ready)
		for _, i := range ready {
			done[tables[i].Name] = true
			order = append(order, tables[i])
		}
	}
	return order, nil
}

// ExecuteSQL выполняет SQL скрипт в одной транзакции
func ExecuteSQL(ctx context.Context, db *sql.DB, script string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction failed: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, script); err != nil {
		return classify(err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	log.Ctx(ctx).Debug().Int("bytes", len(script)).Msg("sql script executed")
	return nil
}

// ExecuteSQLFile выполняет SQL скрипт из файла
func ExecuteSQLFile(ctx context.Context, db *sql.DB, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read sql file: %w", err)
	}
	if err := ExecuteSQL(ctx, db, string(b)); err != nil {
		return fmt.Errorf("execute %s: %w", path, err)
	}
	return nil
}

func hasColumn(t Table, name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}
