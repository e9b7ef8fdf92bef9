package csvparser

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"adventureworks/database"
)

// AnalyzeCSVFiles анализирует CSV-файлы параллельно: читает заголовок и считает строки.
// files отображает имя таблицы на путь к файлу.
func AnalyzeCSVFiles(ctx context.Context, files map[string]string, workers int) (map[string]*database.CSVInfo, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	infos := make(map[string]*database.CSVInfo, len(files))
	var mu sync.Mutex

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for table, path := range files {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ti, err := analyzeFile(table, path)
			if err != nil {
				return err
			}

			mu.Lock()
			infos[table] = ti
			mu.Unlock()

			log.Ctx(ctx).Debug().
				Str("table", table).
				Str("file", path).
				Int("cols", len(ti.Header)).
				Int("rows", ti.Rows).
				Msg("csv analyzed")
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return infos, nil
}

func analyzeFile(table, path string) (*database.CSVInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w", path, ErrNoHeader)
		}
		return nil, fmt.Errorf("%s: read header: %w", path, err)
	}
	ti := &database.CSVInfo{
		Table:  table,
		Path:   path,
		Header: cleanHeader(header),
	}

	for {
		_, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// csv.ParseError содержит номер строки
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		ti.Rows++
	}
	return ti, nil
}

// CheckColumns проверяет, что число полей каждого CSV совпадает с числом колонок таблицы.
// COPY сопоставляет поля позиционно, поэтому имена не сравниваются.
func CheckColumns(tables []database.Table, infos map[string]*database.CSVInfo) error {
	var problems []string
	for _, t := range tables {
		ti, ok := infos[t.Name]
		if !ok {
			continue
		}
		if len(ti.Header) != len(t.Columns) {
			problems = append(problems, fmt.Sprintf(
				"%s: %d fields in %s, table has %d columns", t.Name, len(ti.Header), ti.Path, len(t.Columns),
			))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	sort.Strings(problems)
	return fmt.Errorf("%w: %s", ErrColumnMismatch, strings.Join(problems, "; "))
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}
