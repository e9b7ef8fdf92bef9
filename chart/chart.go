// Package chart рисует SVG-графики по результатам запросов средствами gonum/plot.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

var ErrNoData = errors.New("no data to plot")

const (
	width      = 10 * vg.Inch
	lineHeight = 5 * vg.Inch
	barWidth   = 14 * vg.Millimeter
	maxXTicks  = 12
)

// Series именованный ряд значений, выровненный по общим подписям оси X
type Series struct {
	Name   string
	Values []float64
}

// Bar горизонтальная столбчатая диаграмма, первый элемент сверху
func Bar(w io.Writer, title string, labels []string, values []float64) error {
	if len(labels) == 0 {
		return ErrNoData
	}
	if len(labels) != len(values) {
		return fmt.Errorf("bar chart: %d labels for %d values", len(labels), len(values))
	}

	// NominalY рисует первую подпись внизу
	n := len(labels)
	ys := make(plotter.Values, n)
	names := make([]string, n)
	for i := range labels {
		ys[n-1-i] = values[i]
		names[n-1-i] = labels[i]
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "profit"
	p.X.Tick.Marker = amountTicks{}

	bars, err := plotter.NewBarChart(ys, barWidth/2)
	if err != nil {
		return fmt.Errorf("bar chart: %w", err)
	}
	bars.Horizontal = true
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalY(names...)

	height := vg.Length(n)*barWidth/2*1.6 + 1.5*vg.Inch
	return save(w, p, width, max(height, 4*vg.Inch))
}

// Lines многосерийный линейный график
func Lines(w io.Writer, title string, xLabels []string, series []Series) error {
	if len(xLabels) == 0 || len(series) == 0 {
		return ErrNoData
	}
	for _, s := range series {
		if len(s.Values) != len(xLabels) {
			return fmt.Errorf("line chart: series %s has %d values for %d labels", s.Name, len(s.Values), len(xLabels))
		}
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "profit"
	p.Y.Tick.Marker = amountTicks{}
	p.X.Tick.Marker = labelTicks(xLabels)
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for i, s := range series {
		pts := make(plotter.XYs, len(s.Values))
		for j, v := range s.Values {
			pts[j] = plotter.XY{X: float64(j), Y: v}
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("line chart: series %s: %w", s.Name, err)
		}
		l.LineStyle.Width = vg.Points(2)
		l.LineStyle.Color = plotutil.Color(i)
		p.Add(l)
		p.Legend.Add(s.Name, l)
	}
	return save(w, p, width, lineHeight)
}

func save(w io.Writer, p *plot.Plot, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, "svg")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// amountTicks подписывает деления денежной оси в тысячах и миллионах
type amountTicks struct{}

func (amountTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = formatAmount(ticks[i].Value)
		}
	}
	return ticks
}

// labelTicks ставит категориальные подписи X не чаще maxXTicks раз
func labelTicks(labels []string) plot.TickerFunc {
	step := int(math.Max(1, math.Ceil(float64(len(labels))/maxXTicks)))
	return func(_, _ float64) []plot.Tick {
		ticks := make([]plot.Tick, 0, len(labels))
		for i, label := range labels {
			t := plot.Tick{Value: float64(i)}
			if i%step == 0 {
				t.Label = label
			}
			ticks = append(ticks, t)
		}
		return ticks
	}
}

func formatAmount(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	}
	return fmt.Sprintf("%.2f", v)
}
