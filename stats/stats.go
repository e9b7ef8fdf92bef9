// Package stats считает коэффициенты корреляции по числовым колонкам.
package stats

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"adventureworks/frame"
)

var (
	ErrLengthMismatch = errors.New("samples have different lengths")
	ErrTooFewPoints   = errors.New("at least two points are required")
	ErrUndefined      = errors.New("correlation is undefined for constant samples")
)

// Method метод корреляции
type Method string

const (
	MethodPearson Method = "pearson"
	MethodKendall Method = "kendall"
)

func check(x, y []float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("%w: %d and %d", ErrLengthMismatch, len(x), len(y))
	}
	if len(x) < 2 {
		return ErrTooFewPoints
	}
	return nil
}

// Pearson коэффициент корреляции Пирсона
func Pearson(x, y []float64) (float64, error) {
	if err := check(x, y); err != nil {
		return 0, err
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return 0, ErrUndefined
	}
	return stat.Correlation(x, y, nil), nil
}

// Kendall коэффициент tau-b Кендалла с поправкой на связи
func Kendall(x, y []float64) (float64, error) {
	if err := check(x, y); err != nil {
		return 0, err
	}

	var concordant, discordant, tiesX, tiesY float64
	for i := 0; i < len(x); i++ {
		for j := i + 1; j < len(x); j++ {
			dx := sign(x[i] - x[j])
			dy := sign(y[i] - y[j])
			switch {
			case dx == 0 && dy == 0:
				tiesX++
				tiesY++
			case dx == 0:
				tiesX++
			case dy == 0:
				tiesY++
			case dx == dy:
				concordant++
			default:
				discordant++
			}
		}
	}

	n := float64(len(x))
	pairs := n * (n - 1) / 2
	denom := math.Sqrt((pairs - tiesX) * (pairs - tiesY))
	if denom == 0 {
		return 0, ErrUndefined
	}
	return (concordant - discordant) / denom, nil
}

// Correlation вычисляет коэффициент выбранным методом
func Correlation(method Method, x, y []float64) (float64, error) {
	switch method {
	case MethodPearson:
		return Pearson(x, y)
	case MethodKendall:
		return Kendall(x, y)
	}
	return 0, fmt.Errorf("unknown correlation method %q", method)
}

// CorrelationMatrix попарная корреляция колонок фрейма. Первая колонка результата
// содержит имена, диагональ равна 1.
func CorrelationMatrix(f *frame.Frame, method Method, columns ...string) (*frame.Frame, error) {
	data := make([][]float64, len(columns))
	for i, name := range columns {
		values, err := f.Float64s(name)
		if err != nil {
			return nil, err
		}
		data[i] = values
	}

	out := frame.New(append([]string{""}, columns...)...)
	for i, name := range columns {
		row := make([]any, 0, len(columns)+1)
		row = append(row, name)
		for j := range columns {
			if i == j {
				row = append(row, 1.0)
				continue
			}
			c, err := Correlation(method, data[i], data[j])
			if err != nil {
				return nil, fmt.Errorf("%s/%s: %w", name, columns[j], err)
			}
			row = append(row, c)
		}
		if err := out.Append(row...); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
