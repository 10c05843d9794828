package cli

import (
	"path/filepath"
	"strings"

	"customerlens/internal/adapters/plot"
	"customerlens/internal/adapters/report"
	"customerlens/internal/adapters/source"
	"customerlens/internal/core/table"
	"customerlens/internal/platform/config"

	"github.com/spf13/cobra"
)

var renderOpts struct {
	report string
	out    string
	width  int
	height int
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render every chart in a YAML report",
	Long: `Loads a report, normalizes its source once and writes one file per chart
into the output directory. A relative source path is read from the report's
directory. JSON charts are written as chart data.`,
	Args: cobra.NoArgs,
	RunE: runRender,
}

func init() {
	f := renderCmd.Flags()
	f.StringVar(&renderOpts.report, "report", "", "report YAML path")
	f.StringVarP(&renderOpts.out, "out", "o", "charts", "output directory")
	f.IntVar(&renderOpts.width, "width", plot.DefaultWidth, "image width, overrides CORE_PLOT_WIDTH")
	f.IntVar(&renderOpts.height, "height", plot.DefaultHeight, "image height, overrides CORE_PLOT_HEIGHT")
	_ = renderCmd.MarkFlagRequired("report")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	o := renderOpts
	rep, err := report.Load(o.report)
	if err != nil {
		return err
	}
	rep.Source.Path = resolveSource(o.report, rep.Source.Path)

	p := plot.New(config.New())
	if cmd.Flags().Changed("width") {
		p.Width = o.width
	}
	if cmd.Flags().Changed("height") {
		p.Height = o.height
	}
	workers := config.New().Prefix("CORE_INGEST_").MayInt("WORKERS", 0)

	rn := report.Runner{Opener: opener(cmd), Plotter: p, Normalize: table.NormalizeOptions{Workers: workers}}
	outs, err := rn.Run(cmd.Context(), rep, o.out)
	for _, w := range outs {
		cmd.Printf("%s\t%s\t%d bytes\n", w.Name, w.Path, w.Bytes)
	}
	return err
}

// resolveSource joins a relative file source onto the report's directory
func resolveSource(reportPath, src string) string {
	if src == source.Stdin || filepath.IsAbs(src) || strings.Contains(src, "://") {
		return src
	}
	return filepath.Join(filepath.Dir(reportPath), src)
}
