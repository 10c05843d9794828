package chart

import (
	"math"
	"regexp"
	"slices"
	"strconv"

	"customerlens/internal/core/table"
	perr "customerlens/internal/platform/errors"
)

// Render validates cfg then computes chart data from tb
// an empty table after filtering yields empty points, not an error
func Render(tb *table.Table, cfg Config) (Data, error) {
	if err := cfg.Validate(); err != nil {
		return Data{}, err
	}
	cfg = cfg.WithDefaults()
	if err := checkFields(tb, cfg); err != nil {
		return Data{}, err
	}

	tb, err := applyFilter(tb, cfg.Filter)
	if err != nil {
		return Data{}, err
	}

	out := Data{
		Type:   cfg.Type,
		Title:  cfg.Title,
		Key:    cfg.Key,
		Value:  cfg.Value,
		Points: []Point{},
	}
	switch cfg.Type {
	case TypeTable:
		return renderTable(tb, cfg, out)
	case TypeHistogram:
		return renderHistogram(tb, cfg, out)
	case TypeScatter:
		return renderScatter(tb, cfg, out)
	default:
		out.Agg = cfg.Agg
		out.Geo = cfg.Type == TypeMap
		return renderGrouped(tb, cfg, out)
	}
}

// checkFields rejects columns the table does not have
func checkFields(tb *table.Table, cfg Config) error {
	fields := []struct{ name, col string }{
		{"key", cfg.Key},
		{"value", cfg.Value},
	}
	if cfg.Filter != nil {
		fields = append(fields, struct{ name, col string }{"filter.field", cfg.Filter.Field})
	}
	for _, f := range fields {
		if f.col != "" && !tb.Has(f.col) {
			return perr.WithField(perr.ChartConfigf("unknown column %q", f.col), f.name)
		}
	}
	return nil
}

func applyFilter(tb *table.Table, f *Filter) (*table.Table, error) {
	if f == nil {
		return tb, nil
	}
	var p table.Predicate
	switch f.Op {
	case OpRegex:
		re, err := regexp.Compile(f.Value)
		if err != nil {
			return nil, perr.WithField(perr.ChartConfigf("invalid regex: %v", err), "filter.value")
		}
		p = re.MatchString
	default:
		want := f.Value
		p = func(cell string) bool { return cell == want }
	}
	return tb.Filter(f.Field, p)
}

// number parses a finite float, unknown tokens and NaN or Inf do not count
func number(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func renderTable(tb *table.Table, cfg Config, out Data) (Data, error) {
	var names []string
	for _, n := range []string{cfg.Key, cfg.Value} {
		if n != "" && !slices.Contains(names, n) {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		names = tb.Names()
	}
	rows, err := tb.Rows(names...)
	if err != nil {
		return Data{}, err
	}
	if cfg.Limit > 0 && len(rows) > cfg.Limit {
		rows = rows[:cfg.Limit]
	}
	out.Columns = names
	out.Rows = rows
	return out, nil
}

func renderScatter(tb *table.Table, cfg Config, out Data) (Data, error) {
	rows, err := tb.Rows(cfg.Key, cfg.Value)
	if err != nil {
		return Data{}, err
	}
	for _, r := range rows {
		x, okX := number(r[0])
		y, okY := number(r[1])
		if !okX || !okY {
			out.Skipped++
			continue
		}
		out.Points = append(out.Points, Point{X: x, Y: y})
	}
	if cfg.Limit > 0 && len(out.Points) > cfg.Limit {
		out.Points = out.Points[:cfg.Limit]
	}
	return out, nil
}

func renderHistogram(tb *table.Table, cfg Config, out Data) (Data, error) {
	cells, err := tb.Column(cfg.Value)
	if err != nil {
		return Data{}, err
	}
	vals := make([]float64, 0, len(cells))
	for _, c := range cells {
		v, ok := number(c)
		if !ok {
			out.Skipped++
			continue
		}
		vals = append(vals, v)
	}
	out.Points = histogram(vals, cfg.Bins)
	return out, nil
}

// histogram buckets vals into bins equal width buckets between min and max
// buckets are [lo,hi) except the last which is closed
// a span too wide for float64 is measured in halves, a subnormal span still splits
func histogram(vals []float64, bins int) []Point {
	if len(vals) == 0 {
		return []Point{}
	}
	lo, hi := slices.Min(vals), slices.Max(vals)
	if lo == hi {
		return []Point{{Label: "[" + fmtNum(lo) + "," + fmtNum(hi) + "]", Y: float64(len(vals))}}
	}
	n := float64(bins)
	span := hi - lo
	wide := math.IsInf(span, 0)
	frac := func(v float64) float64 {
		if wide {
			return (v/2 - lo/2) / (hi/2 - lo/2)
		}
		return (v - lo) / span
	}
	edge := func(i int) float64 {
		t := float64(i) / n
		if wide {
			return lo*(1-t) + hi*t
		}
		return lo + span*t
	}

	counts := make([]float64, bins)
	for _, v := range vals {
		f := frac(v) * n
		i := bins - 1
		if !math.IsNaN(f) && f < n {
			i = max(int(f), 0)
		}
		counts[i]++
	}
	pts := make([]Point, bins)
	for i := range pts {
		a, b := edge(i), edge(i+1)
		closer := ")"
		if i == bins-1 {
			b = hi
			closer = "]"
		}
		pts[i] = Point{Label: "[" + fmtNum(a) + "," + fmtNum(b) + closer, Y: counts[i]}
	}
	return pts
}

func fmtNum(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
