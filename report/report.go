package report

import (
	"fmt"
	"io"
	"math"

	"github.com/olekukonko/tablewriter"

	"adventureworks/analysis"
	"adventureworks/frame"
)

// Render печатает фрейм таблицей с заголовком
func Render(w io.Writer, title string, f *frame.Frame) {
	if title != "" {
		fmt.Fprintf(w, "\n%s (%d rows)\n", title, f.Len())
	}
	prettyWriter := tablewriter.NewWriter(w)
	prettyWriter.SetHeader(f.Columns)
	prettyWriter.SetAutoFormatHeaders(false)
	prettyWriter.SetAutoWrapText(false)
	prettyWriter.AppendBulk(f.Strings())
	prettyWriter.Render()
}

// RenderCorrelation печатает коэффициенты корреляции
func RenderCorrelation(w io.Writer, c *analysis.SpendingCorrelation) {
	fmt.Fprintf(w, "\nIncome vs spending correlation (%d customers)\n", c.Points)
	prettyWriter := tablewriter.NewWriter(w)
	prettyWriter.SetHeader([]string{"method", "coefficient"})
	prettyWriter.SetAutoFormatHeaders(false)
	prettyWriter.Append([]string{"pearson", formatCoefficient(c.Pearson)})
	prettyWriter.Append([]string{"kendall", formatCoefficient(c.Kendall)})
	prettyWriter.Render()
}

func formatCoefficient(r float64) string {
	if math.IsNaN(r) {
		return "undefined"
	}
	return fmt.Sprintf("%.4f", r)
}
