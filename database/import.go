package database

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// ImportResult итог загрузки одной таблицы
type ImportResult struct {
	Table    string
	Rows     int64
	Duration time.Duration
}

// ImportCSV импортирует CSV-файлы в таблицы в порядке зависимостей.
// Каждая таблица загружается в отдельной транзакции.
// В обоих режимах пустое поле, в кавычках или без, сохраняется как NULL.
func ImportCSV(
	ctx context.Context, db *sql.DB, tables []Table, relations []Relation,
	files map[string]string, schemaName string, mode LoadMode,
) ([]ImportResult, error) {
	order, err := LoadOrder(tables, relations)
	if err != nil {
		return nil, err
	}

	var results []ImportResult
	for _, t := range order {
		path, ok := files[t.Name]
		if !ok {
			log.Ctx(ctx).Warn().Str("table", t.Name).Msg("no csv file configured, skipping")
			continue
		}

		start := time.Now()
		var rows int64
		switch mode {
		case LoadModeServer:
			rows, err = importServerSide(ctx, db, t, path, schemaName)
		case LoadModeClient, "":
			rows, err = importSingleTable(ctx, db, t, path, schemaName)
		default:
			return results, fmt.Errorf("unknown load mode %q", mode)
		}
		if err != nil {
			return results, fmt.Errorf("import table %s from %s: %w", t.Name, path, err)
		}

		res := ImportResult{Table: t.Name, Rows: rows, Duration: time.Since(start)}
		log.Ctx(ctx).Info().
			Str("table", res.Table).
			Int64("rows", res.Rows).
			Dur("took", res.Duration).
			Msg("table imported")
		results = append(results, res)
	}
	return results, nil
}

// importSingleTable передаёт строки CSV через COPY FROM STDIN.
// encoding/csv не отличает "" от пустого поля, поэтому любое пустое значение уходит как NULL.
func importSingleTable(ctx context.Context, db *sql.DB, table Table, path, schemaName string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	cols := table.ColumnNames()
	r := csv.NewReader(f)
	r.FieldsPerRecord = len(cols)
	r.ReuseRecord = true

	// Заголовок пропускается, как в COPY ... CSV HEADER
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("read header: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction failed: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, pq.CopyInSchema(schemaName, table.Name, cols...))
	if err != nil {
		return 0, fmt.Errorf("prepare copy failed: %w", err)
	}
	defer stmt.Close()

	values := make([]any, len(cols))
	var rowCount int64
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rowCount, fmt.Errorf("read csv: %w", err)
		}
		for i, v := range record {
			if v == "" {
				values[i] = nil
			} else {
				values[i] = v
			}
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return rowCount, classify(err)
		}
		rowCount++
	}

	// Пустой Exec завершает COPY, здесь сервер сообщает о нарушениях ограничений
	if _, err := stmt.ExecContext(ctx); err != nil {
		return rowCount, classify(err)
	}
	if err := stmt.Close(); err != nil {
		return rowCount, classify(err)
	}
	if err := tx.Commit(); err != nil {
		return rowCount, fmt.Errorf("commit failed: %w", classify(err))
	}
	return rowCount, nil
}

// importServerSide выполняет COPY из файла, доступного серверу PostgreSQL.
// FORCE_NULL по всем колонкам превращает "" в NULL так же, как клиентский режим.
func importServerSide(ctx context.Context, db *sql.DB, table Table, path, schemaName string) (int64, error) {
	query := serverCopyQuery(table, path, schemaName)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction failed: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, query)
	if err != nil {
		return 0, classify(err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit failed: %w", classify(err))
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func serverCopyQuery(table Table, path, schemaName string) string {
	cols := table.ColumnNames()
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pq.QuoteIdentifier(c)
	}
	return fmt.Sprintf(
		"COPY %s.%s FROM %s WITH (FORMAT csv, HEADER true, DELIMITER ',', FORCE_NULL (%s))",
		pq.QuoteIdentifier(schemaName), pq.QuoteIdentifier(table.Name), pq.QuoteLiteral(path),
		strings.Join(quoted, ", "),
	)
}

// RowCounts возвращает количество строк в каждой таблице
func RowCounts(ctx context.Context, db *sql.DB, tables []Table, schemaName string) (map[string]int64, error) {
	counts := make(map[string]int64, len(tables))
	for _, t := range tables {
		var n int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s.%s", pq.QuoteIdentifier(schemaName), pq.QuoteIdentifier(t.Name))
		if err := db.QueryRowContext(ctx, query).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", t.Name, err)
		}
		counts[t.Name] = n
	}
	return counts, nil
}
