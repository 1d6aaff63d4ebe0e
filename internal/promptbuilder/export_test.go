package promptbuilder

import (
	"strings"
	"testing"
)

func TestExportRoundTrip(t *testing.T) {
	sel := DefaultCatalog().DefaultSelection()
	sel.Set(Style, Custom("ukiyo-e <woodblock> & ink"))
	sel.Details = "a \"quoted\" cat"
	rec := Assemble(sel)

	data, err := rec.ExportJSON()
	if err != nil {
		t.Fatal(err)
	}
	got, err := ParseRecord(data)
	if err != nil {
		t.Fatal(err)
	}
	if got != rec {
		t.Fatalf("round trip = %+v, want %+v", got, rec)
	}
	if s := string(data); !strings.Contains(s, "<woodblock>") || strings.Contains(s, `\u003c`) {
		t.Fatalf("html escaped: %s", data)
	}
}

func TestExportKeyOrderAndIndent(t *testing.T) {
	data, err := Assemble(DefaultCatalog().DefaultSelection()).ExportJSON()
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	if !strings.HasPrefix(s, "{\n  \"style\": ") {
		t.Fatalf("unexpected layout: %s", s)
	}

	last := -1
	for _, k := range recordKeys {
		i := strings.Index(s, `"`+k+`"`)
		if i < 0 || i < last {
			t.Fatalf("key %q out of order in %s", k, s)
		}
		last = i
	}
	if !strings.Contains(s, `"custom_elements": "None"`) {
		t.Fatalf("custom_elements missing: %s", s)
	}
}

func TestParseRecordMissingKey(t *testing.T) {
	_, err := ParseRecord([]byte(`{"style":"anime","lighting":"neon"}`))
	if err == nil {
		t.Fatal("expected error for incomplete document")
	}
	if _, err := ParseRecord([]byte(`not json`)); err == nil {
		t.Fatal("expected error for invalid json")
	}
}
