package promptbuilder

import "testing"

func TestDefaultIndex(t *testing.T) {
	opts := []string{"a", "b", "c"}
	tests := []struct {
		def  string
		want int
	}{
		{"a", 0},
		{"c", 2},
		{"missing", 3},
		{"", 3},
	}
	for _, tt := range tests {
		if got := DefaultIndex(opts, tt.def); got != tt.want {
			t.Errorf("DefaultIndex(%q) = %d, want %d", tt.def, got, tt.want)
		}
	}
}

func TestParseSelection(t *testing.T) {
	if c := ParseSelection("neon", "ignored"); c.IsCustom() || c.Resolve() != "neon" {
		t.Fatalf("listed option: %+v", c)
	}
	if c := ParseSelection(CustomOption, "candle light"); !c.IsCustom() || c.Resolve() != "candle light" {
		t.Fatalf("custom option: %+v", c)
	}
	if c := ParseSelection(CustomOption, ""); !c.IsCustom() || c.Resolve() != "" {
		t.Fatalf("empty custom option: %+v", c)
	}
}

func TestDefaultChoice(t *testing.T) {
	spec := FieldSpec{Options: []string{"x", "y"}, Default: "y"}
	if c := DefaultChoice(spec); c.IsCustom() || c.Index(spec) != 1 {
		t.Fatalf("listed default: %+v", c)
	}

	spec.Default = "z"
	c := DefaultChoice(spec)
	if !c.IsCustom() || c.CustomText() != "z" {
		t.Fatalf("unlisted default: %+v", c)
	}
	if c.Index(spec) != len(spec.Extended())-1 {
		t.Fatalf("unlisted default index = %d", c.Index(spec))
	}
}

func TestExtendedEndsWithCustom(t *testing.T) {
	for _, spec := range DefaultCatalog().Fields() {
		ext := spec.Extended()
		if ext[len(ext)-1] != CustomOption || len(ext) != len(spec.Options)+1 {
			t.Errorf("%s: extended = %v", spec.Key(), ext)
		}
	}
}
