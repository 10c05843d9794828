// Package chart turns a customer table plus a chart config into chart data
// the same data drives interactive JSON charts and static images
package chart

import (
	"regexp"

	perr "customerlens/internal/platform/errors"
	"customerlens/internal/platform/validate"
)

// Type is the chart kind
type Type string

// chart kinds
const (
	TypeBar       Type = "bar"
	TypeLine      Type = "line"
	TypePie       Type = "pie"
	TypeScatter   Type = "scatter"
	TypeHistogram Type = "histogram"
	TypeMap       Type = "map"
	TypeTable     Type = "table"
)

// Agg is how a group's value cells fold into one number
type Agg string

// aggregations
const (
	AggCount    Agg = "count"
	AggSum      Agg = "sum"
	AggMean     Agg = "mean"
	AggMin      Agg = "min"
	AggMax      Agg = "max"
	AggDistinct Agg = "distinct"
)

// Op is a filter operator
type Op string

// filter operators
const (
	OpEq    Op = "eq"
	OpRegex Op = "regex"
)

// SortBy orders groups
type SortBy string

// orderings
const (
	SortKey   SortBy = "key"
	SortValue SortBy = "value"
	SortNone  SortBy = "none"
)

// enumerations in display order, clients discover them through the API
var (
	Types = []Type{TypeBar, TypeLine, TypePie, TypeScatter, TypeHistogram, TypeMap, TypeTable}
	Aggs  = []Agg{AggCount, AggSum, AggMean, AggMin, AggMax, AggDistinct}
	Ops   = []Op{OpEq, OpRegex}
	Sorts = []SortBy{SortKey, SortValue, SortNone}
)

// DefaultBins is the histogram bucket count when none is set
const DefaultBins = 10

// MaxLimit caps Limit
const MaxLimit = 1000

// Filter keeps rows whose Field cell matches Value
// eq is literal equality, regex is an RE2 match anywhere in the cell
type Filter struct {
	Field string `json:"field" yaml:"field" validate:"required"`
	Op    Op     `json:"op" yaml:"op" validate:"required,oneof=eq regex"`
	Value string `json:"value" yaml:"value"`
}

// Config describes one chart
type Config struct {
	Type   Type    `json:"type" yaml:"type" validate:"required,oneof=bar line pie scatter histogram map table"`
	Title  string  `json:"title,omitempty" yaml:"title,omitempty"`
	Key    string  `json:"key,omitempty" yaml:"key,omitempty"`
	Value  string  `json:"value,omitempty" yaml:"value,omitempty"`
	Agg    Agg     `json:"agg,omitempty" yaml:"agg,omitempty" validate:"omitempty,oneof=count sum mean min max distinct"`
	Filter *Filter `json:"filter,omitempty" yaml:"filter,omitempty" validate:"omitempty"`
	Sort   SortBy  `json:"sort,omitempty" yaml:"sort,omitempty" validate:"omitempty,oneof=key value none"`
	Limit  int     `json:"limit,omitempty" yaml:"limit,omitempty" validate:"min=0,max=1000"`
	Bins   int     `json:"bins,omitempty" yaml:"bins,omitempty" validate:"min=0,max=1000"`
}

func init() {
	validate.RegisterStruct(configRules, Config{})
	validate.RegisterStruct(filterRules, Filter{})
}

// WithDefaults fills agg, sort and bins
func (c Config) WithDefaults() Config {
	if c.Agg == "" {
		c.Agg = AggCount
	}
	if c.Sort == "" {
		c.Sort = SortKey
	}
	if c.Type == TypeHistogram && c.Bins == 0 {
		c.Bins = DefaultBins
	}
	return c
}

// Validate checks tags and cross field rules, failures carry ErrorCodeChartConfig
func (c Config) Validate() error {
	err := validate.Struct(c.WithDefaults())
	if err == nil {
		return nil
	}
	e, ok := perr.As(err)
	if !ok || e.Code() != perr.ErrorCodeValidation {
		return err
	}
	return perr.WithField(perr.ChartConfigf("%s", e.ToWire().Message), e.Field())
}

// grouped kinds aggregate value cells per key
func (t Type) grouped() bool {
	switch t {
	case TypeBar, TypeLine, TypePie, TypeMap:
		return true
	}
	return false
}

func configRules(sl validate.StructLevel) {
	c := sl.Current().Interface().(Config)
	agg := c.Agg
	if agg == "" {
		agg = AggCount
	}
	switch {
	case c.Type.grouped():
		if c.Key == "" {
			sl.ReportError(c.Key, "key", "Key", "required", "")
		}
		if agg != AggCount && c.Value == "" {
			sl.ReportError(c.Value, "value", "Value", "required", "")
		}
	case c.Type == TypeScatter:
		if c.Key == "" {
			sl.ReportError(c.Key, "key", "Key", "required", "")
		}
		if c.Value == "" {
			sl.ReportError(c.Value, "value", "Value", "required", "")
		}
	case c.Type == TypeHistogram:
		if c.Value == "" {
			sl.ReportError(c.Value, "value", "Value", "required", "")
		}
	}
}

func filterRules(sl validate.StructLevel) {
	f := sl.Current().Interface().(Filter)
	if f.Op != OpRegex {
		return
	}
	if _, err := regexp.Compile(f.Value); err != nil {
		sl.ReportError(f.Value, "value", "Value", "regexp", "")
	}
}
