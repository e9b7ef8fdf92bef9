// Package analysis выполняет аналитические запросы Adventure Works
// и возвращает их результаты фреймами.
package analysis

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"adventureworks/frame"
	"adventureworks/stats"
)

// Querier подмножество *sql.DB, нужное для запросов
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type Analyzer struct {
	db    Querier
	limit int
}

// New создает Analyzer. limit ограничивает размер топ-выборок, <= 0 означает все строки
func New(db Querier, limit int) *Analyzer {
	return &Analyzer{db: db, limit: limit}
}

// SpendingCorrelation связь дохода клиента и его трат.
// Неопределенный коэффициент равен NaN
type SpendingCorrelation struct {
	Points  int
	Pearson float64
	Kendall float64
	Data    *frame.Frame
}

// CreateViews создает представления quantity_sold и unit_profit
func (a *Analyzer) CreateViews(ctx context.Context) error {
	if _, err := a.db.ExecContext(ctx, createViews); err != nil {
		return fmt.Errorf("create views: %w", err)
	}
	return nil
}

// TopProductsByQuantity товары с наибольшим числом проданных единиц
func (a *Analyzer) TopProductsByQuantity(ctx context.Context) (*frame.Frame, error) {
	return a.query(ctx, "top products by quantity", a.limit, topProductsByQuantity)
}

// TopProductsByProfit товары с наибольшей суммарной прибылью
func (a *Analyzer) TopProductsByProfit(ctx context.Context) (*frame.Frame, error) {
	f, err := a.query(ctx, "top products by profit", a.limit, topProductsByProfit)
	if err != nil {
		return nil, err
	}
	return frame.ConvertCurrency(f, "total_profit")
}

// TopSpendingCustomers клиенты с наибольшими тратами и их доход
func (a *Analyzer) TopSpendingCustomers(ctx context.Context) (*frame.Frame, error) {
	return a.query(ctx, "top spending customers", a.limit, topSpendingCustomers)
}

// SpendingCorrelation считает корреляции Пирсона и Кендалла между income и total_spent
// по всем клиентам. Клиенты без дохода пропускаются.
func (a *Analyzer) SpendingCorrelation(ctx context.Context) (*SpendingCorrelation, error) {
	all, err := a.query(ctx, "spending correlation", 0, topSpendingCustomers)
	if err != nil {
		return nil, err
	}
	f, err := all.Select("income", "total_spent")
	if err != nil {
		return nil, err
	}
	if f, err = f.DropNull("income", "total_spent"); err != nil {
		return nil, err
	}
	if f, err = frame.ConvertCurrency(f, "income", "total_spent"); err != nil {
		return nil, err
	}

	income, err := f.Float64s("income")
	if err != nil {
		return nil, err
	}
	spent, err := f.Float64s("total_spent")
	if err != nil {
		return nil, err
	}

	res := &SpendingCorrelation{Points: len(income), Data: f}
	if res.Pearson, err = coefficient(ctx, stats.Pearson, income, spent); err != nil {
		return nil, fmt.Errorf("pearson: %w", err)
	}
	if res.Kendall, err = coefficient(ctx, stats.Kendall, income, spent); err != nil {
		return nil, fmt.Errorf("kendall: %w", err)
	}
	log.Ctx(ctx).Info().
		Int("points", res.Points).
		Float64("pearson", res.Pearson).
		Float64("kendall", res.Kendall).
		Msg("income vs spending correlation")
	return res, nil
}

// coefficient возвращает NaN, если коэффициент не определен на этих данных, как pandas
func coefficient(ctx context.Context, fn func(x, y []float64) (float64, error), x, y []float64) (float64, error) {
	r, err := fn(x, y)
	if errors.Is(err, stats.ErrTooFewPoints) || errors.Is(err, stats.ErrUndefined) {
		log.Ctx(ctx).Warn().Err(err).Int("points", len(x)).Msg("correlation is undefined")
		return math.NaN(), nil
	}
	return r, err
}

// MonthlyRegionalProfit прибыль по месяцам и регионам
func (a *Analyzer) MonthlyRegionalProfit(ctx context.Context) (*frame.Frame, error) {
	f, err := a.query(ctx, "monthly regional profit", 0, monthlyRegionalProfit)
	if err != nil {
		return nil, err
	}
	return frame.ConvertCurrency(f, "profit")
}

// RankProductsByQuantity ранжирует товары по продажам внутри категории.
// Ранг 1 у максимума, равные значения получают равный ранг.
func (a *Analyzer) RankProductsByQuantity(ctx context.Context) (*frame.Frame, error) {
	return a.query(ctx, "rank products by quantity", 0, rankProductsByQuantity, a.limit)
}

// RankRegionsByMonthlyProfit ранжирует регионы по прибыли внутри каждого месяца
func (a *Analyzer) RankRegionsByMonthlyProfit(ctx context.Context) (*frame.Frame, error) {
	f, err := a.query(ctx, "rank regions by monthly profit", 0, rankRegionsByMonthlyProfit)
	if err != nil {
		return nil, err
	}
	return frame.ConvertCurrency(f, "profit")
}

// ReturnRates доля возвратов по товарам
func (a *Analyzer) ReturnRates(ctx context.Context) (*frame.Frame, error) {
	return a.query(ctx, "return rates", a.limit, returnRates)
}

func (a *Analyzer) query(ctx context.Context, name string, limit int, query string, args ...any) (*frame.Frame, error) {
	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	f, err := frame.FromRows(rows, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	log.Ctx(ctx).Debug().Str("query", name).Int("rows", f.Len()).Msg("query finished")
	return f, nil
}
