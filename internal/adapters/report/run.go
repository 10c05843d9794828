package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"customerlens/internal/adapters/plot"
	"customerlens/internal/adapters/source"
	"customerlens/internal/core/chart"
	"customerlens/internal/core/table"
	perr "customerlens/internal/platform/errors"
	"customerlens/internal/platform/logger"
)

// Output is one written chart
type Output struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Format Format `json:"format"`
	Bytes  int    `json:"bytes"`
}

// Runner renders reports to a directory
type Runner struct {
	Opener    *source.Opener
	Plotter   plot.Plotter
	Normalize table.NormalizeOptions
}

// Run loads the source once, then renders and writes each chart in report order
// file names are the chart names made file safe, eg "By Gender" -> by-gender.png
func (rn Runner) Run(ctx context.Context, rep *Report, outDir string) ([]Output, error) {
	log := logger.C(ctx).With().Str("component", "report").Str("title", rep.Title).Logger()
	if dup := duplicateFile(rep.Charts); dup != "" {
		return nil, perr.WithField(perr.Validationf("two charts write %s", dup), "charts")
	}

	rd, err := rn.Opener.Open(ctx, rep.Source.Path)
	if err != nil {
		return nil, err
	}
	tb, err := table.FromCSV(rd, rep.Source.Columns)
	_ = rd.Close()
	if err != nil {
		return nil, err
	}
	if tb, err = tb.Normalize(ctx, rn.Normalize); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "create %s", outDir)
	}

	out := make([]Output, 0, len(rep.Charts))
	for _, e := range rep.Charts {
		b, err := rn.encode(tb, e)
		if err != nil {
			return out, perr.WithOp(err, "chart "+e.Name)
		}
		path := filepath.Join(outDir, e.FileName())
		if err := os.WriteFile(path, b, 0o644); err != nil {
			return out, perr.Wrapf(err, perr.ErrorCodeUnknown, "write %s", path)
		}
		log.Info().Str("chart", e.Name).Str("path", path).Int("bytes", len(b)).Msg("chart written")
		out = append(out, Output{Name: e.Name, Path: path, Format: e.Format, Bytes: len(b)})
	}
	return out, nil
}

func (rn Runner) encode(tb *table.Table, e Entry) ([]byte, error) {
	data, err := chart.Render(tb, e.Chart)
	if err != nil {
		return nil, err
	}
	if data.Title == "" {
		data.Title = e.Name
	}
	switch e.Format {
	case FormatJSON:
		return json.MarshalIndent(data, "", "  ")
	case FormatSVG:
		return rn.Plotter.Plot(data, plot.SVG)
	default:
		return rn.Plotter.Plot(data, plot.PNG)
	}
}
