package normalize

// Attr is one opaque passthrough column, eg city or email
type Attr struct {
	Name  string
	Value string
}

// RawRecord is a customer row as read from the source
type RawRecord struct {
	Age        string
	Salutation string
	Attrs      []Attr
}

// Customer is a normalized row, it is built once and not mutated afterwards
type Customer struct {
	Age        Age
	Gender     Gender
	Salutation string
	Attrs      []Attr
}

// Attr returns the passthrough value for name and whether it exists
func (c Customer) Attr(name string) (string, bool) {
	for _, a := range c.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// NormalizeRecord applies both field normalizers and sanitizes passthrough values
// the salutation is kept verbatim so it can still be shown next to the derived gender
func NormalizeRecord(r RawRecord) Customer {
	attrs := make([]Attr, len(r.Attrs))
	for i, a := range r.Attrs {
		attrs[i] = Attr{Name: a.Name, Value: Sanitize(a.Value)}
	}
	return Customer{
		Age:        NormalizeAge(r.Age),
		Gender:     NormalizeGender(r.Salutation),
		Salutation: r.Salutation,
		Attrs:      attrs,
	}
}
