package schema

import (
	"fmt"
	"math"
)

// EmptyDataSet returns the zero-length dataset drawn after a failed cycle.
func EmptyDataSet(kind ChartKind) ChartDataSet {
	return ChartDataSet{Kind: kind, Series: []SeriesResult{}}
}

// FormatX renders an x value as a category label.
func FormatX(x any) string {
	switch v := x.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Categories returns the x labels across all series in first-seen order. A label
// repeated within one series gets one slot per occurrence, so no point is lost.
func (ds ChartDataSet) Categories() []string {
	slots := make(map[string]int)
	var out []string
	for _, s := range ds.Series {
		seen := make(map[string]int)
		for _, p := range s.Points {
			label := FormatX(p.X)
			seen[label]++
			if seen[label] > slots[label] {
				slots[label]++
				out = append(out, label)
			}
		}
	}
	return out
}

// Slots maps every point of the series to its index in categories. The n-th
// point with a label takes the n-th slot carrying that label; -1 means no slot.
func (s SeriesResult) Slots(categories []string) []int {
	positions := make(map[string][]int, len(categories))
	for i, c := range categories {
		positions[c] = append(positions[c], i)
	}
	used := make(map[string]int)
	out := make([]int, len(s.Points))
	for i, p := range s.Points {
		label := FormatX(p.X)
		n := used[label]
		used[label]++
		if n < len(positions[label]) {
			out[i] = positions[label][n]
		} else {
			out[i] = -1
		}
	}
	return out
}

// PointCount returns the number of points across all series.
func (ds ChartDataSet) PointCount() int {
	total := 0
	for _, s := range ds.Series {
		total += len(s.Points)
	}
	return total
}

// Aligned returns the y values of a series aligned to the given categories.
// Missing categories and NaN values are reported with ok=false.
func (s SeriesResult) Aligned(categories []string) (values []float64, ok []bool) {
	values = make([]float64, len(categories))
	ok = make([]bool, len(categories))
	for i, slot := range s.Slots(categories) {
		if slot < 0 || math.IsNaN(s.Points[i].Y) {
			continue
		}
		values[slot] = s.Points[i].Y
		ok[slot] = true
	}
	return values, ok
}
