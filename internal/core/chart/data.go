package chart

// Point is one datum, Label is set for grouped and histogram charts, X for scatter
type Point struct {
	Label string  `json:"label,omitempty"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y"`
}

// Data is the rendered chart, serialized as is for interactive clients
type Data struct {
	Type  Type   `json:"type"`
	Title string `json:"title,omitempty"`
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`
	Agg   Agg    `json:"agg,omitempty"`

	Points []Point `json:"points"`

	// Columns and Rows are only set for table charts
	Columns []string   `json:"columns,omitempty"`
	Rows    [][]string `json:"rows,omitempty"`

	// Skipped counts cells left out of a numeric fold, eg unknown ages
	Skipped int `json:"skipped"`

	// Geo marks a map chart, clients draw Points as a choropleth keyed by Label
	Geo bool `json:"geo,omitempty"`
}

// Empty reports whether there is nothing to draw
func (d Data) Empty() bool { return len(d.Points) == 0 && len(d.Rows) == 0 }

// Labels returns the point labels in order
func (d Data) Labels() []string {
	out := make([]string, len(d.Points))
	for i, p := range d.Points {
		out[i] = p.Label
	}
	return out
}

// Total sums Y across points
func (d Data) Total() float64 {
	var s float64
	for _, p := range d.Points {
		s += p.Y
	}
	return s
}
