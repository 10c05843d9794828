// Package plot draws chart data as PNG or SVG with go-chart
package plot

import (
	"bytes"
	"math"
	"strings"

	"customerlens/internal/core/chart"
	"customerlens/internal/platform/config"
	perr "customerlens/internal/platform/errors"

	gochart "github.com/wcharczuk/go-chart/v2"
)

// Format is an image encoding
type Format string

// supported encodings
const (
	PNG Format = "png"
	SVG Format = "svg"
)

// Formats lists the encodings Plot accepts
var Formats = []Format{PNG, SVG}

// ParseFormat accepts png and svg in any case, empty is png
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", PNG:
		return PNG, nil
	case SVG:
		return SVG, nil
	}
	return "", perr.WithField(perr.InvalidArgf("unsupported image format %q", s), "format")
}

// ContentType is the HTTP media type of f
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Ext is the file extension of f without the dot
func (f Format) Ext() string { return string(f) }

func (f Format) provider() gochart.RendererProvider {
	if f == SVG {
		return gochart.SVG
	}
	return gochart.PNG
}

// Defaults for the canvas
const (
	DefaultWidth  = 1024
	DefaultHeight = 512
)

// Plotter renders chart data at a fixed canvas size
type Plotter struct {
	Width  int
	Height int
}

// New reads CORE_PLOT_WIDTH and CORE_PLOT_HEIGHT
func New(cfg config.Conf) Plotter {
	c := cfg.Prefix("CORE_PLOT_")
	return Plotter{
		Width:  c.MayIntIn("WIDTH", DefaultWidth, 64, 8192),
		Height: c.MayIntIn("HEIGHT", DefaultHeight, 64, 8192),
	}
}

func (p Plotter) size() (int, int) {
	w, h := p.Width, p.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// Plot encodes d as an image
// table charts, empty data and pies that sum to zero are invalid arguments
func (p Plotter) Plot(d chart.Data, f Format) ([]byte, error) {
	if d.Type == chart.TypeTable {
		return nil, perr.WithField(perr.InvalidArgf("table charts cannot be plotted"), "type")
	}
	if len(d.Points) == 0 {
		return nil, perr.InvalidArgf("nothing to plot")
	}

	var buf bytes.Buffer
	var err error
	switch d.Type {
	case chart.TypePie:
		pc := p.pie(d)
		if len(pc.Values) == 0 {
			return nil, perr.InvalidArgf("pie values sum to zero")
		}
		err = pc.Render(f.provider(), &buf)
	case chart.TypeLine, chart.TypeScatter:
		err = p.xy(d).Render(f.provider(), &buf)
	default:
		err = p.bar(d).Render(f.provider(), &buf)
	}
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeRender, "plot")
	}
	return buf.Bytes(), nil
}

func (p Plotter) bar(d chart.Data) gochart.BarChart {
	w, h := p.size()
	bars := make([]gochart.Value, len(d.Points))
	for i, pt := range d.Points {
		bars[i] = gochart.Value{Label: pt.Label, Value: pt.Y}
	}
	// leave room for the y axis and keep bars visible on wide groupings
	bw := max(4, min(50, (w-100)/(2*len(bars))))
	lo, hi := yRange(d.Points)
	lo, hi = pad(math.Min(0, lo), math.Max(0, hi))
	return gochart.BarChart{
		Title:      d.Title,
		Width:      w,
		Height:     h,
		BarWidth:   bw,
		BarSpacing: bw,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		YAxis: gochart.YAxis{
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		Bars: bars,
	}
}

// pie drops slices that are not positive, go-chart cannot draw them
func (p Plotter) pie(d chart.Data) gochart.PieChart {
	w, h := p.size()
	vals := make([]gochart.Value, 0, len(d.Points))
	for _, pt := range d.Points {
		if pt.Y <= 0 {
			continue
		}
		vals = append(vals, gochart.Value{Label: pt.Label, Value: pt.Y})
	}
	return gochart.PieChart{Title: d.Title, Width: w, Height: h, Values: vals}
}

func (p Plotter) xy(d chart.Data) gochart.Chart {
	w, h := p.size()
	xs := make([]float64, len(d.Points))
	ys := make([]float64, len(d.Points))
	var ticks []gochart.Tick
	for i, pt := range d.Points {
		if d.Type == chart.TypeScatter {
			xs[i] = pt.X
		} else {
			xs[i] = float64(i)
			ticks = append(ticks, gochart.Tick{Value: float64(i), Label: pt.Label})
		}
		ys[i] = pt.Y
	}

	style := gochart.Style{StrokeWidth: 2}
	if d.Type == chart.TypeScatter {
		style = gochart.Style{StrokeWidth: gochart.Disabled, DotWidth: 4}
	}
	xlo, xhi := pad(minMax(xs))
	ylo, yhi := pad(yRange(d.Points))
	return gochart.Chart{
		Title:      d.Title,
		Width:      w,
		Height:     h,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Name:  d.Key,
			Range: &gochart.ContinuousRange{Min: xlo, Max: xhi},
			Ticks: ticks,
		},
		YAxis: gochart.YAxis{
			Name:  d.Value,
			Range: &gochart.ContinuousRange{Min: ylo, Max: yhi},
		},
		Series: []gochart.Series{
			gochart.ContinuousSeries{Name: d.Title, XValues: xs, YValues: ys, Style: style},
		},
	}
}

func yRange(pts []chart.Point) (float64, float64) {
	ys := make([]float64, len(pts))
	for i, pt := range pts {
		ys[i] = pt.Y
	}
	return minMax(ys)
}

func minMax(vs []float64) (float64, float64) {
	lo, hi := vs[0], vs[0]
	for _, v := range vs[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// pad widens a degenerate range, go-chart rejects a zero delta
func pad(lo, hi float64) (float64, float64) {
	if hi > lo {
		return lo, hi
	}
	return lo - 1, hi + 1
}
