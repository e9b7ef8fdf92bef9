//go:build integration

package analysis_test

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"adventureworks/analysis"
	"adventureworks/pipeline"
	"adventureworks/stats"
	"adventureworks/testutil"
)

type AnalysisSuite struct {
	testutil.PgContainerSuite
	analyzer *analysis.Analyzer
}

func (s *AnalysisSuite) SetupSuite() {
	s.PgContainerSuite.SetupSuite()
	ctx := context.Background()

	r, err := pipeline.New(s.Config, s.DB, io.Discard)
	s.Require().NoError(err)
	s.Require().NoError(r.Schema(ctx))
	s.Require().NoError(r.Load(ctx))

	s.analyzer = analysis.New(s.DB, 10)
	s.Require().NoError(s.analyzer.CreateViews(ctx))
}

func (s *AnalysisSuite) TestTopProductsByQuantity() {
	f, err := s.analyzer.TopProductsByQuantity(context.Background())
	s.Require().NoError(err)
	s.Equal([]string{"product_name", "total_quantity"}, f.Columns)
	s.Equal([][]any{
		{"Water Bottle - 30 oz.", int64(10)},
		{"Road-150 Red", int64(5)},
		{"Road-250 Black", int64(5)},
		{"Road-350 Blue", int64(3)},
	}, f.Rows)
}

func (s *AnalysisSuite) TestTopProductsByQuantity_Limit() {
	f, err := analysis.New(s.DB, 2).TopProductsByQuantity(context.Background())
	s.Require().NoError(err)
	s.Equal(2, f.Len())
}

func (s *AnalysisSuite) TestTopProductsByProfit() {
	f, err := s.analyzer.TopProductsByProfit(context.Background())
	s.Require().NoError(err)
	s.Equal([][]any{
		{"Road-150 Red", 7500.0},
		{"Road-250 Black", 5000.0},
		{"Road-350 Blue", 900.0},
		{"Water Bottle - 30 oz.", 31.2},
	}, f.Rows)
}

func (s *AnalysisSuite) TestTopSpendingCustomers() {
	f, err := s.analyzer.TopSpendingCustomers(context.Background())
	s.Require().NoError(err)
	s.Equal([]string{"firstname", "lastname", "income", "total_spent"}, f.Columns)
	s.Equal([][]any{
		{"Ruben", "Torres", "$60,000.00", "$12,500.00"},
		{"Eugene", "Huang", "$60,000.00", "$10,500.00"},
		{"Jon", "Yang", "$90,000.00", "$7,029.94"},
		{"Christy", "Zhu", "$70,000.00", "$3,619.96"},
	}, f.Rows)
}

func (s *AnalysisSuite) TestSpendingCorrelation() {
	c, err := s.analyzer.SpendingCorrelation(context.Background())
	s.Require().NoError(err)

	income := []float64{60000, 60000, 90000, 70000}
	spent := []float64{12500, 10500, 7029.94, 3619.96}
	pearson, err := stats.Pearson(income, spent)
	s.Require().NoError(err)
	kendall, err := stats.Kendall(income, spent)
	s.Require().NoError(err)

	s.Equal(4, c.Points)
	s.InDelta(pearson, c.Pearson, 1e-9)
	s.InDelta(kendall, c.Kendall, 1e-9)
	s.Equal([]string{"income", "total_spent"}, c.Data.Columns)
}

func (s *AnalysisSuite) TestRankProductsByQuantity_Ties() {
	f, err := s.analyzer.RankProductsByQuantity(context.Background())
	s.Require().NoError(err)
	s.Equal([]string{"category_name", "product_name", "total_quantity", "rank"}, f.Columns)
	s.Equal([][]any{
		{"Accessories", "Water Bottle - 30 oz.", int64(10), int64(1)},
		{"Bikes", "Road-150 Red", int64(5), int64(1)},
		{"Bikes", "Road-250 Black", int64(5), int64(1)},
		{"Bikes", "Road-350 Blue", int64(3), int64(3)},
	}, f.Rows)
}

func (s *AnalysisSuite) TestRankProductsByQuantity_Limit() {
	f, err := analysis.New(s.DB, 1).RankProductsByQuantity(context.Background())
	s.Require().NoError(err)
	// связанные товары проходят фильтр rank <= 1 вместе
	s.Equal(3, f.Len())
}

func (s *AnalysisSuite) TestMonthlyRegionalProfit() {
	f, err := s.analyzer.MonthlyRegionalProfit(context.Background())
	s.Require().NoError(err)
	jan := time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2020, time.February, 1, 0, 0, 0, 0, time.UTC)

	s.Require().Equal(5, f.Len())
	months, err := f.Column("month")
	s.Require().NoError(err)
	s.True(jan.Equal(months[0].(time.Time)))
	s.True(feb.Equal(months[4].(time.Time)))

	regions, err := f.Column("region")
	s.Require().NoError(err)
	s.Equal([]any{"Australia", "Northwest", "Australia", "Central", "Northwest"}, regions)

	profit, err := f.Float64s("profit")
	s.Require().NoError(err)
	s.InDeltaSlice([]float64{5000, 7500, 900, 12.48, 18.72}, profit, 1e-9)
}

func (s *AnalysisSuite) TestRankRegionsByMonthlyProfit() {
	f, err := s.analyzer.RankRegionsByMonthlyProfit(context.Background())
	s.Require().NoError(err)

	regions, err := f.Column("region")
	s.Require().NoError(err)
	s.Equal([]any{"Northwest", "Australia", "Australia", "Northwest", "Central"}, regions)

	ranks, err := f.Column("rank")
	s.Require().NoError(err)
	s.Equal([]any{int64(1), int64(2), int64(1), int64(2), int64(3)}, ranks)
}

func (s *AnalysisSuite) TestReturnRates() {
	f, err := s.analyzer.ReturnRates(context.Background())
	s.Require().NoError(err)
	s.Equal([][]any{
		{"Road-150 Red", int64(5), int64(1), 0.2},
		{"Water Bottle - 30 oz.", int64(10), int64(2), 0.2},
		{"Road-250 Black", int64(5), int64(0), 0.0},
		{"Road-350 Blue", int64(3), int64(0), 0.0},
	}, f.Rows)
}

func TestAnalysisSuite(t *testing.T) {
	suite.Run(t, new(AnalysisSuite))
}
