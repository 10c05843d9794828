package cli

import (
	"strings"
	"time"

	"customerlens/internal/core/table"
	"customerlens/internal/platform/config"
	perr "customerlens/internal/platform/errors"
	"customerlens/internal/platform/logger"
	"customerlens/internal/platform/store"
	"customerlens/internal/services/datasets/domain"
	dsrepo "customerlens/internal/services/datasets/repo"
	dssvc "customerlens/internal/services/datasets/service"

	"github.com/spf13/cobra"
)

var ingestOpts struct {
	in    string
	name  string
	dbURL string
	cols  table.Columns
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Store a customer CSV as a dataset",
	Long: `Normalizes a customer CSV and stores it as a dataset in Postgres, mirroring
rows to ClickHouse when SERVICE_CLICKHOUSE_ENABLED is set. The schema is
applied first. Prints the new dataset id.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.StringVar(&ingestOpts.in, "in", "", "input CSV path, URL or - for stdin")
	f.StringVar(&ingestOpts.name, "name", "", "dataset name, defaults to the file name")
	f.StringVar(&ingestOpts.dbURL, "dburl", "", "postgres url, overrides SERVICE_PGSQL_DBURL")
	addColumnFlags(ingestCmd, &ingestOpts.cols)
	_ = ingestCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(ingestCmd)
}

// storeConfig reads the store env with the flag url taking precedence
// unlike store.FromEnv a missing url is an error, not a panic
func storeConfig(root config.Conf, url string) (store.Config, error) {
	pg := root.Prefix("SERVICE_PGSQL_")
	ch := root.Prefix("SERVICE_CLICKHOUSE_")
	if url == "" {
		url = pg.MayString("DBURL", "")
	}
	if url == "" {
		return store.Config{}, perr.Unavailablef("ingest needs postgres, set --dburl or SERVICE_PGSQL_DBURL")
	}
	cfg := store.Config{
		AppName: AppName,
		PG: store.PGConfig{
			Enabled:        true,
			URL:            url,
			MaxConns:       2,
			SlowQueryMs:    pg.MayInt("SLOW_MS", 250),
			LogSQL:         pg.MayBool("LOG_SQL", false),
			ConnectRetries: pg.MayIntIn("CONNECT_RETRIES", 3, 1, 100),
			PingTimeout:    pg.MayDuration("PING_TIMEOUT", 3*time.Second),
		},
		CH: store.CHConfig{ClientName: AppName, ClientTag: "cli"},
	}
	if ch.MayBool("ENABLED", false) {
		cfg.CH.Enabled = true
		cfg.CH.URL = ch.MustString("DBURL")
	}
	return cfg, nil
}

// datasetName is the base file name without extensions, eg "exports/jan.csv.gz" -> "jan"
func datasetName(in string) string {
	name := in
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "."); i > 0 {
		name = name[:i]
	}
	if name == "" || name == "-" {
		return "stdin"
	}
	return name
}

func runIngest(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	o := ingestOpts
	root := config.New()

	cfg, err := storeConfig(root, o.dbURL)
	if err != nil {
		return err
	}
	if o.name == "" {
		o.name = datasetName(o.in)
	}

	rd, err := opener(cmd).Open(ctx, o.in)
	if err != nil {
		return err
	}
	defer rd.Close()

	log := logger.Named("cli")
	st, err := store.Open(ctx, cfg, store.WithLogger(*log))
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "open store")
	}
	defer func() {
		if err := st.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}()

	svc := dssvc.New(st.PG, dsrepo.NewPG(), dsrepo.NewCHMirror(st.CH), dssvc.ConfigFromEnv(root))
	if err := svc.Migrate(ctx); err != nil {
		return err
	}
	d, err := svc.Ingest(ctx, domain.IngestInput{Name: o.name, Columns: o.cols}, rd)
	if err != nil {
		return err
	}

	cmd.Println(d.ID.String())
	cmd.Printf("%s: %d rows, %d known ages, genders %v\n", d.Name, d.Rows, d.KnownAges, d.Genders)
	return nil
}
