package chart

import "adventureworks/frame"

// BarsFromFrame берет подписи и значения из двух колонок фрейма
func BarsFromFrame(f *frame.Frame, labelCol, valueCol string) ([]string, []float64, error) {
	labelVals, err := f.Column(labelCol)
	if err != nil {
		return nil, nil, err
	}
	values, err := f.Float64s(valueCol)
	if err != nil {
		return nil, nil, err
	}
	labels := make([]string, len(labelVals))
	for i, v := range labelVals {
		labels[i] = frame.FormatValue(v)
	}
	return labels, values, nil
}

// SeriesFromFrame строит ряды из длинного формата (x, group, value).
// Порядок X и групп - порядок первого появления, отсутствующие точки равны 0.
func SeriesFromFrame(f *frame.Frame, xCol, groupCol, valueCol string) ([]string, []Series, error) {
	xi, err := f.Index(xCol)
	if err != nil {
		return nil, nil, err
	}
	gi, err := f.Index(groupCol)
	if err != nil {
		return nil, nil, err
	}
	values, err := f.Float64s(valueCol)
	if err != nil {
		return nil, nil, err
	}

	xIndex := map[string]int{}
	groupIndex := map[string]int{}
	var xLabels, groups []string
	for _, row := range f.Rows {
		x := frame.FormatValue(row[xi])
		if _, ok := xIndex[x]; !ok {
			xIndex[x] = len(xLabels)
			xLabels = append(xLabels, x)
		}
		g := frame.FormatValue(row[gi])
		if _, ok := groupIndex[g]; !ok {
			groupIndex[g] = len(groups)
			groups = append(groups, g)
		}
	}

	series := make([]Series, len(groups))
	for i, g := range groups {
		series[i] = Series{Name: g, Values: make([]float64, len(xLabels))}
	}
	for r, row := range f.Rows {
		x := frame.FormatValue(row[xi])
		g := frame.FormatValue(row[gi])
		series[groupIndex[g]].Values[xIndex[x]] += values[r]
	}
	return xLabels, series, nil
}
