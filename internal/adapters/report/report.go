// Package report reads YAML chart reports and renders every chart in one pass
//
//	title: customers
//	source:
//	  path: customers.csv
//	  columns: {age: age, salutation: salutation}
//	charts:
//	  - name: by gender
//	    format: png
//	    chart: {type: bar, key: gender}
package report

import (
	"bytes"
	"errors"
	"io"
	"os"

	"customerlens/internal/core/chart"
	"customerlens/internal/core/table"
	perr "customerlens/internal/platform/errors"
	pstrings "customerlens/internal/platform/strings"
	"customerlens/internal/platform/validate"

	"gopkg.in/yaml.v3"
)

// Format is the output encoding of one chart
type Format string

// encodings
const (
	FormatPNG  Format = "png"
	FormatSVG  Format = "svg"
	FormatJSON Format = "json"
)

// Source points at the CSV export
type Source struct {
	Path    string        `yaml:"path" validate:"required"`
	Columns table.Columns `yaml:"columns"`
}

// Entry is one named chart
type Entry struct {
	Name   string       `yaml:"name" validate:"required"`
	Format Format       `yaml:"format" validate:"omitempty,oneof=png svg json"`
	Chart  chart.Config `yaml:"chart"`
}

// Report is an ordered list of charts over one source
type Report struct {
	Title  string  `yaml:"title"`
	Source Source  `yaml:"source"`
	Charts []Entry `yaml:"charts" validate:"required,min=1,dive"`
}

// FileName is the written file for e, the chart name made file safe plus the format
func (e Entry) FileName() string {
	f := e.Format
	if f == "" {
		f = FormatPNG
	}
	return pstrings.FileSafe(e.Name) + "." + string(f)
}

func init() {
	validate.RegisterStruct(reportRules, Report{})
}

// reportRules rejects charts that would write the same file
func reportRules(sl validate.StructLevel) {
	r := sl.Current().Interface().(Report)
	if dup := duplicateFile(r.Charts); dup != "" {
		sl.ReportError(r.Charts, "charts", "Charts", "unique", dup)
	}
}

func duplicateFile(es []Entry) string {
	seen := make(map[string]struct{}, len(es))
	for _, e := range es {
		fn := e.FileName()
		if _, dup := seen[fn]; dup {
			return fn
		}
		seen[fn] = struct{}{}
	}
	return ""
}

// Decode parses a report, unknown keys are errors, then validates every chart
func Decode(r io.Reader) (*Report, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var rep Report
	if err := dec.Decode(&rep); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, perr.Validationf("empty report")
		}
		return nil, perr.Wrap(err, perr.ErrorCodeValidation, "parse report")
	}
	if err := validate.Struct(rep); err != nil {
		return nil, err
	}
	for i := range rep.Charts {
		if rep.Charts[i].Format == "" {
			rep.Charts[i].Format = FormatPNG
		}
	}
	return &rep, nil
}

// Load reads and decodes a report file
func Load(path string) (*Report, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, perr.NotFoundf("report %s not found", path)
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "read report %s", path)
	}
	return Decode(bytes.NewReader(b))
}

// Encode writes rep as YAML
func Encode(w io.Writer, rep *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return err
	}
	return enc.Close()
}
