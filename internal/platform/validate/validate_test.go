package validate

import (
	"testing"

	perr "customerlens/internal/platform/errors"
)

type inner struct {
	Op    string `json:"op" validate:"oneof=eq regex"`
	Value string `json:"value" validate:"omitempty,regexp"`
}

type outer struct {
	Key    string `json:"key" validate:"required"`
	Limit  int    `yaml:"limit" validate:"min=0,max=1000"`
	Filter *inner `json:"filter,omitempty" validate:"omitempty"`
}

func TestStruct_OK(t *testing.T) {
	if err := Struct(outer{Key: "age", Limit: 10, Filter: &inner{Op: "regex", Value: "^Lon"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStruct_FieldNames(t *testing.T) {
	cases := []struct {
		name  string
		in    outer
		field string
		msg   string
	}{
		{"required", outer{}, "key", "key is a required field"},
		{"max via yaml tag", outer{Key: "a", Limit: 5000}, "limit", "limit must be at most 1000"},
		{"min", outer{Key: "a", Limit: -1}, "limit", "limit must be at least 0"},
		{"nested oneof", outer{Key: "a", Filter: &inner{Op: "like"}}, "filter.op", "op must be one of [eq regex]"},
		{"nested regexp", outer{Key: "a", Filter: &inner{Op: "regex", Value: "("}}, "filter.value", "value must be a valid regular expression"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Struct(c.in)
			e, ok := perr.As(err)
			if !ok || e.Code() != perr.ErrorCodeValidation {
				t.Fatalf("want validation error, got %v", err)
			}
			if e.Field() != c.field {
				t.Fatalf("field = %q, want %q", e.Field(), c.field)
			}
			if e.Error() != c.msg {
				t.Fatalf("msg = %q, want %q", e.Error(), c.msg)
			}
		})
	}
}

func TestStruct_InvalidTarget(t *testing.T) {
	if !perr.IsCode(Struct(nil), perr.ErrorCodeUnknown) {
		t.Fatalf("nil target should be an internal error")
	}
}

func TestRegisterStruct(t *testing.T) {
	type pair struct {
		A int `json:"a"`
		B int `json:"b"`
	}
	RegisterStruct(func(sl StructLevel) {
		p := sl.Current().Interface().(pair)
		if p.A > p.B {
			sl.ReportError(p.A, "a", "A", "ltefield", "b")
		}
	}, pair{})

	if err := Struct(pair{A: 1, B: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Struct(pair{A: 3, B: 2}); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
}
