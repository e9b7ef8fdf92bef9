package frame

import (
	"fmt"

	"adventureworks/currency"
)

// ConvertCurrency приводит указанные колонки к float64, удаляя "$" и ",".
// Числовые значения остаются без изменений, поэтому повторный вызов ничего не меняет.
// NULL остаётся nil.
func ConvertCurrency(f *Frame, columns ...string) (*Frame, error) {
	for _, name := range columns {
		idx, err := f.Index(name)
		if err != nil {
			return nil, err
		}
		for r, row := range f.Rows {
			switch v := row[idx].(type) {
			case nil, float64:
			case string:
				x, err := currency.Parse(v)
				if err != nil {
					return nil, fmt.Errorf("column %s row %d: %w", name, r, err)
				}
				row[idx] = x
			default:
				x, ok := toFloat(v)
				if !ok {
					return nil, fmt.Errorf("column %s row %d: unsupported value %T", name, r, v)
				}
				row[idx] = x
			}
		}
	}
	return f, nil
}
