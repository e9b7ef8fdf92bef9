// Package frame хранит результаты запросов в памяти небольшой таблицей с именованными колонками.
package frame

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
)

var ErrUnknownColumn = errors.New("unknown column")

// Frame результат запроса: имена колонок и строки в порядке выборки
type Frame struct {
	Columns []string
	Rows    [][]any
}

// New создает пустой фрейм с заданными колонками
func New(columns ...string) *Frame {
	return &Frame{Columns: columns}
}

// FromRows материализует *sql.Rows. limit > 0 читает не больше limit строк,
// limit <= 0 читает все. rows закрывается в любом случае.
func FromRows(rows *sql.Rows, limit int) (*Frame, error) {
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}
	f := New(cols...)

	for (limit <= 0 || len(f.Rows) < limit) && rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		for i, v := range values {
			// lib/pq отдает MONEY и NUMERIC как []byte
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		f.Rows = append(f.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return f, nil
}

// Append добавляет строку, число значений должно совпадать с числом колонок
func (f *Frame) Append(values ...any) error {
	if len(values) != len(f.Columns) {
		return fmt.Errorf("append: got %d values for %d columns", len(values), len(f.Columns))
	}
	f.Rows = append(f.Rows, values)
	return nil
}

func (f *Frame) Len() int {
	return len(f.Rows)
}

// Index возвращает позицию колонки
func (f *Frame) Index(name string) (int, error) {
	for i, c := range f.Columns {
		if c == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w %q", ErrUnknownColumn, name)
}

// Column возвращает значения одной колонки
func (f *Frame) Column(name string) ([]any, error) {
	idx, err := f.Index(name)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// Select возвращает новый фрейм только с указанными колонками
func (f *Frame) Select(names ...string) (*Frame, error) {
	idxs := make([]int, len(names))
	for i, name := range names {
		idx, err := f.Index(name)
		if err != nil {
			return nil, err
		}
		idxs[i] = idx
	}
	out := New(names...)
	out.Rows = make([][]any, len(f.Rows))
	for r, row := range f.Rows {
		sel := make([]any, len(idxs))
		for i, idx := range idxs {
			sel[i] = row[idx]
		}
		out.Rows[r] = sel
	}
	return out, nil
}

// Float64s возвращает числовую колонку, NULL и нечисловые значения дают ошибку
func (f *Frame) Float64s(name string) ([]float64, error) {
	col, err := f.Column(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(col))
	for i, v := range col {
		x, ok := toFloat(v)
		if !ok {
			return nil, fmt.Errorf("column %s row %d: %v (%T) is not numeric", name, i, v, v)
		}
		out[i] = x
	}
	return out, nil
}

// Strings форматирует все значения, NULL выводится пустой строкой
func (f *Frame) Strings() [][]string {
	out := make([][]string, len(f.Rows))
	for r, row := range f.Rows {
		rec := make([]string, len(row))
		for i, v := range row {
			rec[i] = FormatValue(v)
		}
		out[r] = rec
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}

// DropNull возвращает фрейм без строк, где любая из указанных колонок равна NULL
func (f *Frame) DropNull(names ...string) (*Frame, error) {
	idxs := make([]int, len(names))
	for i, name := range names {
		idx, err := f.Index(name)
		if err != nil {
			return nil, err
		}
		idxs[i] = idx
	}
	out := New(f.Columns...)
rows:
	for _, row := range f.Rows {
		for _, idx := range idxs {
			if row[idx] == nil {
				continue rows
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}
