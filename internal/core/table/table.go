// Package table is the in memory customer DataFrame
// every column is held as strings so the normalizers see the literal source tokens
package table

import (
	"io"
	"slices"

	"customerlens/internal/core/normalize"
	perr "customerlens/internal/platform/errors"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Columns names the columns normalization reads and writes
type Columns struct {
	Age        string `json:"age" yaml:"age"`
	Salutation string `json:"salutation" yaml:"salutation"`
	Gender     string `json:"gender" yaml:"gender"`
}

// DefaultColumns is age, salutation and gender
func DefaultColumns() Columns {
	return Columns{Age: "age", Salutation: "salutation", Gender: "gender"}
}

// WithDefaults fills empty names from DefaultColumns
func (c Columns) WithDefaults() Columns {
	d := DefaultColumns()
	if c.Age == "" {
		c.Age = d.Age
	}
	if c.Salutation == "" {
		c.Salutation = d.Salutation
	}
	if c.Gender == "" {
		c.Gender = d.Gender
	}
	return c
}

// Table wraps a gota DataFrame plus the column roles
type Table struct {
	df         dataframe.DataFrame
	cols       Columns
	normalized bool
}

// FromCSV reads a CSV with a header row
// an empty cols field falls back to the default name
func FromCSV(r io.Reader, cols Columns) (*Table, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return nil, perr.Wrap(df.Err, perr.ErrorCodeCSV, "read csv")
	}
	return &Table{df: df, cols: cols.WithDefaults()}, nil
}

// FromRecords builds a table from a header and rows, used by tests and stored reads
func FromRecords(header []string, rows [][]string, cols Columns) (*Table, error) {
	if len(header) == 0 {
		return nil, perr.CSVf("empty header")
	}
	data := make([][]string, len(header))
	for i := range data {
		data[i] = make([]string, len(rows))
	}
	for r, row := range rows {
		if len(row) != len(header) {
			return nil, perr.CSVf("row %d has %d fields, want %d", r+1, len(row), len(header))
		}
		for c, v := range row {
			data[c][r] = v
		}
	}
	ss := make([]series.Series, len(header))
	for i, name := range header {
		ss[i] = series.New(data[i], series.String, name)
	}
	df := dataframe.New(ss...)
	if df.Err != nil {
		return nil, perr.Wrap(df.Err, perr.ErrorCodeCSV, "build table")
	}
	return &Table{df: df, cols: cols.WithDefaults()}, nil
}

// FromCustomers rebuilds a normalized table from typed rows
// names is the full column order, the age, salutation and gender roles come from cols
func FromCustomers(names []string, cs []normalize.Customer, cols Columns) (*Table, error) {
	cols = cols.WithDefaults()
	if !slices.Contains(names, cols.Gender) {
		names = append(slices.Clone(names), cols.Gender)
	}
	rows := make([][]string, len(cs))
	for i, c := range cs {
		row := make([]string, len(names))
		for j, n := range names {
			switch n {
			case cols.Age:
				row[j] = c.Age.String()
			case cols.Salutation:
				row[j] = c.Salutation
			case cols.Gender:
				row[j] = c.Gender.String()
			default:
				row[j], _ = c.Attr(n)
			}
		}
		rows[i] = row
	}
	t, err := FromRecords(names, rows, cols)
	if err != nil {
		return nil, err
	}
	t.normalized = true
	return t, nil
}

// Columns returns the column roles
func (t *Table) Columns() Columns { return t.cols }

// Normalized reports whether Normalize has run or the table came from typed rows
func (t *Table) Normalized() bool { return t.normalized }

// Names lists the column names in order
func (t *Table) Names() []string { return t.df.Names() }

// Len is the row count
func (t *Table) Len() int { return t.df.Nrow() }

// Has reports whether name is a column
func (t *Table) Has(name string) bool { return slices.Contains(t.df.Names(), name) }

// Column returns a copy of the cells of name
func (t *Table) Column(name string) ([]string, error) {
	if !t.Has(name) {
		return nil, perr.WithField(perr.Validationf("unknown column %q", name), name)
	}
	return t.df.Col(name).Records(), nil
}

// Rows returns the cells of names row by row, all columns when names is empty
func (t *Table) Rows(names ...string) ([][]string, error) {
	if len(names) == 0 {
		names = t.Names()
	}
	cols := make([][]string, len(names))
	for i, n := range names {
		c, err := t.Column(n)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	out := make([][]string, t.Len())
	for r := range out {
		row := make([]string, len(names))
		for c := range names {
			row[c] = cols[c][r]
		}
		out[r] = row
	}
	return out, nil
}

// Predicate decides whether a cell keeps its row
type Predicate func(cell string) bool

// Filter keeps the rows whose field cell satisfies p
func (t *Table) Filter(field string, p Predicate) (*Table, error) {
	if !t.Has(field) {
		return nil, perr.WithField(perr.Validationf("unknown column %q", field), field)
	}
	if t.Len() == 0 {
		return t, nil
	}
	df := t.df.Filter(dataframe.F{
		Colname:    field,
		Comparator: series.CompFunc,
		Comparando: func(el series.Element) bool { return p(el.String()) },
	})
	if df.Err != nil {
		return nil, perr.Wrap(df.Err, perr.ErrorCodeUnknown, "filter")
	}
	return &Table{df: df, cols: t.cols, normalized: t.normalized}, nil
}

// WriteCSV writes the header and every row
func (t *Table) WriteCSV(w io.Writer) error {
	if err := t.df.WriteCSV(w); err != nil {
		return perr.Wrap(err, perr.ErrorCodeCSV, "write csv")
	}
	return nil
}

// Customers returns the typed rows of a normalized table
// columns other than the three roles become passthrough attributes in column order
func (t *Table) Customers() ([]normalize.Customer, error) {
	if !t.normalized {
		return nil, perr.Validationf("table is not normalized")
	}
	names := t.Names()
	rows, err := t.Rows(names...)
	if err != nil {
		return nil, err
	}
	out := make([]normalize.Customer, len(rows))
	for i, row := range rows {
		var c normalize.Customer
		for j, n := range names {
			switch n {
			case t.cols.Age:
				c.Age = normalize.ParseAge(row[j])
			case t.cols.Salutation:
				c.Salutation = row[j]
			case t.cols.Gender:
				c.Gender = normalize.ParseGender(row[j])
			default:
				c.Attrs = append(c.Attrs, normalize.Attr{Name: n, Value: row[j]})
			}
		}
		out[i] = c
	}
	return out, nil
}
