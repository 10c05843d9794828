package chart

import (
	"cmp"
	"slices"
	"strconv"

	"customerlens/internal/core/table"
)

type group struct {
	key      string
	count    int
	sum      float64
	n        int
	min, max float64
	distinct map[string]struct{}
}

func renderGrouped(tb *table.Table, cfg Config, out Data) (Data, error) {
	keys, err := tb.Column(cfg.Key)
	if err != nil {
		return Data{}, err
	}
	var vals []string
	if cfg.Value != "" {
		if vals, err = tb.Column(cfg.Value); err != nil {
			return Data{}, err
		}
	}

	byKey := make(map[string]*group)
	var order []*group
	for i, k := range keys {
		g, ok := byKey[k]
		if !ok {
			g = &group{key: k}
			byKey[k] = g
			order = append(order, g)
		}
		g.count++
		if vals == nil {
			continue
		}
		cell := vals[i]
		switch cfg.Agg {
		case AggDistinct:
			if g.distinct == nil {
				g.distinct = make(map[string]struct{})
			}
			g.distinct[cell] = struct{}{}
		case AggSum, AggMean, AggMin, AggMax:
			v, ok := number(cell)
			if !ok {
				out.Skipped++
				continue
			}
			if g.n == 0 || v < g.min {
				g.min = v
			}
			if g.n == 0 || v > g.max {
				g.max = v
			}
			g.sum += v
			g.n++
		}
	}

	pts := make([]Point, 0, len(order))
	for _, g := range order {
		y, ok := fold(g, cfg.Agg)
		if !ok {
			continue
		}
		pts = append(pts, Point{Label: g.key, Y: y})
	}
	sortPoints(pts, cfg.Sort)
	if cfg.Limit > 0 && len(pts) > cfg.Limit {
		pts = pts[:cfg.Limit]
	}
	out.Points = pts
	return out, nil
}

// fold returns the group value, false when a numeric fold saw no numbers
// such groups are dropped, sum of nothing is still zero
func fold(g *group, agg Agg) (float64, bool) {
	switch agg {
	case AggDistinct:
		return float64(len(g.distinct)), true
	case AggSum:
		return g.sum, true
	case AggMean:
		if g.n == 0 {
			return 0, false
		}
		return g.sum / float64(g.n), true
	case AggMin:
		return g.min, g.n > 0
	case AggMax:
		return g.max, g.n > 0
	default:
		return float64(g.count), true
	}
}

// sortPoints orders by key or value, none keeps first seen order
// stable so ties keep first seen order
func sortPoints(pts []Point, by SortBy) {
	switch by {
	case SortKey:
		slices.SortStableFunc(pts, func(a, b Point) int { return compareKeys(a.Label, b.Label) })
	case SortValue:
		slices.SortStableFunc(pts, func(a, b Point) int { return cmp.Compare(b.Y, a.Y) })
	}
}

// compareKeys puts integer keys first in numeric order, then the rest lexically
// so ages read 3, 33, 45, unknown
func compareKeys(a, b string) int {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	switch {
	case aErr == nil && bErr == nil:
		return cmp.Compare(ai, bi)
	case aErr == nil:
		return -1
	case bErr == nil:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}
