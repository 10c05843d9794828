package plot

import (
	"bytes"
	"testing"

	"customerlens/internal/core/chart"
	"customerlens/internal/platform/config"
	perr "customerlens/internal/platform/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func grouped(typ chart.Type) chart.Data {
	return chart.Data{
		Type:  typ,
		Title: "customers by gender",
		Key:   "gender",
		Points: []chart.Point{
			{Label: "female", Y: 2},
			{Label: "male", Y: 3},
			{Label: "unknown", Y: 1},
		},
	}
}

func TestPlot_Kinds(t *testing.T) {
	p := Plotter{Width: 320, Height: 200}
	for _, typ := range []chart.Type{chart.TypeBar, chart.TypeMap, chart.TypeHistogram, chart.TypePie, chart.TypeLine} {
		t.Run(string(typ), func(t *testing.T) {
			b, err := p.Plot(grouped(typ), PNG)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(b, pngMagic))
		})
	}
}

func TestPlot_ScatterSVG(t *testing.T) {
	d := chart.Data{Type: chart.TypeScatter, Key: "x", Value: "y", Points: []chart.Point{{X: 1, Y: 2}, {X: 3, Y: 1}, {X: 4, Y: 5}}}
	b, err := Plotter{}.Plot(d, SVG)
	require.NoError(t, err)
	assert.Contains(t, string(b), "<svg")
}

func TestPlot_SinglePointLine(t *testing.T) {
	d := chart.Data{Type: chart.TypeLine, Points: []chart.Point{{Label: "45", Y: 1}}}
	_, err := Plotter{Width: 200, Height: 100}.Plot(d, PNG)
	require.NoError(t, err)
}

func TestPlot_AllZeroBars(t *testing.T) {
	d := chart.Data{Type: chart.TypeBar, Points: []chart.Point{{Label: "a", Y: 0}, {Label: "b", Y: 0}}}
	_, err := Plotter{Width: 200, Height: 100}.Plot(d, PNG)
	require.NoError(t, err)
}

func TestPlot_Rejects(t *testing.T) {
	p := Plotter{}
	tests := []struct {
		name string
		d    chart.Data
	}{
		{"table", chart.Data{Type: chart.TypeTable, Rows: [][]string{{"a"}}}},
		{"empty", chart.Data{Type: chart.TypeBar}},
		{"zero pie", chart.Data{Type: chart.TypePie, Points: []chart.Point{{Label: "a", Y: 0}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := p.Plot(tc.d, PNG)
			require.Error(t, err)
			assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, PNG, f)
	f, err = ParseFormat("SVG")
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", f.ContentType())
	assert.Equal(t, "svg", f.Ext())
	assert.Equal(t, "image/png", PNG.ContentType())

	_, err = ParseFormat("gif")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))
}

func TestNew_FromEnv(t *testing.T) {
	t.Setenv("CORE_PLOT_WIDTH", "640")
	p := New(config.New())
	assert.Equal(t, 640, p.Width)
	assert.Equal(t, DefaultHeight, p.Height)
}
