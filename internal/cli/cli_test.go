package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	perr "customerlens/internal/platform/errors"
	"customerlens/internal/platform/testkit"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags puts every flag back to its default so runs do not leak into each other
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_HasCommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"normalize", "render", "ingest", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestNormalize_WritesFile(t *testing.T) {
	in := testkit.WriteFile(t, "customers.csv", testkit.CustomersCSV)
	out := filepath.Join(t.TempDir(), "clean.csv")

	stdout, err := execute(t, nil, "normalize", "--in", in, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote 6 rows to "+out+" (3 known ages)")

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "age,salutation,name,city,gender", lines[0])
	assert.Equal(t, "45,Mr.,Ann Smith,London,male", lines[1])
	assert.Equal(t, "33,Mrs.,Bo Li,Paris,female", lines[2])
	assert.Equal(t, "unknown,Dr.,Cy Ray,London,unknown", lines[3])
}

func TestNormalize_StdinToStdout(t *testing.T) {
	stdout, err := execute(t, strings.NewReader(testkit.CustomersCSV), "normalize", "--in", "-")
	require.NoError(t, err)
	assert.Contains(t, stdout, "-3,Miss.,Di Ng,Berlin,female")
	assert.NotContains(t, stdout, "wrote")
}

func TestNormalize_CustomColumns(t *testing.T) {
	in := testkit.WriteFile(t, "c.csv", "years,title\n40,Mr.\n")

	stdout, err := execute(t, nil, "normalize", "--in", in,
		"--age-col", "years", "--salutation-col", "title", "--gender-col", "sex")
	require.NoError(t, err)
	assert.Contains(t, stdout, "years,title,sex")
	assert.Contains(t, stdout, "40,Mr.,male")
}

func TestNormalize_Errors(t *testing.T) {
	t.Run("missing column", func(t *testing.T) {
		in := testkit.WriteFile(t, "c.csv", "name\nAnn\n")
		_, err := execute(t, nil, "normalize", "--in", in)
		require.Error(t, err)
		e, ok := perr.As(err)
		require.True(t, ok)
		assert.Equal(t, perr.ErrorCodeValidation, e.Code())
		assert.Equal(t, "age", e.Field())
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, nil, "normalize", "--in", filepath.Join(t.TempDir(), "nope.csv"))
		assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound))
	})
	t.Run("no input flag", func(t *testing.T) {
		_, err := execute(t, nil, "normalize")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `required flag(s) "in" not set`)
	})
}

const reportYAML = `title: Customers
source:
  path: customers.csv
charts:
  - name: By Gender
    chart: {type: bar, key: gender}
  - name: Ages
    format: json
    chart:
      type: histogram
      value: age
`

func TestRender_WritesEveryChart(t *testing.T) {
	csv := testkit.WriteFile(t, "customers.csv", testkit.CustomersCSV)
	rep := filepath.Join(filepath.Dir(csv), "report.yaml")
	require.NoError(t, os.WriteFile(rep, []byte(reportYAML), 0o600))
	outDir := filepath.Join(t.TempDir(), "charts")

	stdout, err := execute(t, nil, "render", "--report", rep, "--out", outDir, "--width", "320", "--height", "200")
	require.NoError(t, err)
	assert.Contains(t, stdout, "By Gender\t"+filepath.Join(outDir, "by-gender.png"))
	assert.Contains(t, stdout, "Ages\t"+filepath.Join(outDir, "ages.json"))

	png, err := os.ReadFile(filepath.Join(outDir, "by-gender.png"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	js, err := os.ReadFile(filepath.Join(outDir, "ages.json"))
	require.NoError(t, err)
	assert.Contains(t, string(js), `"type": "histogram"`)
}

func TestRender_MissingReport(t *testing.T) {
	_, err := execute(t, nil, "render", "--report", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound))
}

func TestResolveSource(t *testing.T) {
	abs, err := filepath.Abs("x.csv")
	require.NoError(t, err)
	cases := map[string]string{
		"customers.csv":         filepath.Join("reports", "customers.csv"),
		"-":                     "-",
		"https://host/c.csv":    "https://host/c.csv",
		abs:                     abs,
		"../data/customers.csv": filepath.Join("data", "customers.csv"),
	}
	for in, want := range cases {
		assert.Equal(t, want, resolveSource(filepath.Join("reports", "r.yaml"), in), in)
	}
}

func TestIngest_NeedsPostgres(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "")
	in := testkit.WriteFile(t, "customers.csv", testkit.CustomersCSV)

	_, err := execute(t, nil, "ingest", "--in", in)
	require.Error(t, err)
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUnavailable))
	assert.Contains(t, err.Error(), "needs postgres")
}

func TestDatasetName(t *testing.T) {
	cases := map[string]string{
		"customers.csv":      "customers",
		"exports/jan.csv.gz": "jan",
		`C:\exports\feb.csv`: "feb",
		"-":                  "stdin",
		"https://h/x/q3.csv": "q3",
		"noext":              "noext",
	}
	for in, want := range cases {
		assert.Equal(t, want, datasetName(in), in)
	}
}

func TestVersionCmd(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)

	stdout, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "customerlens version dev")
	assert.Contains(t, stdout, "commit ")
}
