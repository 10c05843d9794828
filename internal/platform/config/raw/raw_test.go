package raw

import "testing"

func TestConfGet(t *testing.T) {
	t.Setenv("LOG_LEVEL", " info ")
	t.Setenv("LOG_SERVICE", "customerlens-api")

	log := New().Prefix("LOG_")
	tests := []struct {
		name string
		key  string
		def  string
		want string
	}{
		{name: "trimmed hit", key: "LEVEL", def: "debug", want: "info"},
		{name: "plain hit", key: "SERVICE", def: "", want: "customerlens-api"},
		{name: "missing uses default", key: "FORMAT", def: "console", want: "console"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := log.Get(tt.key, tt.def); got != tt.want {
				t.Fatalf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestConfGetBool(t *testing.T) {
	c := New().Prefix("LOG_")
	t.Setenv("LOG_T1", "true")
	t.Setenv("LOG_T2", "1")
	t.Setenv("LOG_T3", " YES ")
	t.Setenv("LOG_F1", "false")
	t.Setenv("LOG_F2", "maybe")

	tests := []struct {
		key  string
		def  bool
		want bool
	}{
		{"T1", false, true},
		{"T2", false, true},
		{"T3", false, true},
		{"F1", true, false},
		{"F2", true, false},
		{"UNSET", true, true},
	}
	for _, tt := range tests {
		if got := c.GetBool(tt.key, tt.def); got != tt.want {
			t.Fatalf("GetBool(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestConfGetInt(t *testing.T) {
	c := New().Prefix("LOG_")
	t.Setenv("LOG_SAMPLE_EVERY", " 10 ")
	t.Setenv("LOG_NEG", "-2")
	t.Setenv("LOG_WORD", "ten")

	if got := c.GetInt("SAMPLE_EVERY", 0); got != 10 {
		t.Fatalf("GetInt = %d, want 10", got)
	}
	if got := c.GetInt("NEG", 3); got != 3 {
		t.Fatalf("GetInt negative = %d, want default", got)
	}
	if got := c.GetInt("WORD", 4); got != 4 {
		t.Fatalf("GetInt word = %d, want default", got)
	}
	if got := c.GetInt("UNSET", 5); got != 5 {
		t.Fatalf("GetInt unset = %d, want default", got)
	}
}
