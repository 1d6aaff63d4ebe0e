package promptbuilder

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	ExportFilename    = "image_prompt.json"
	ExportContentType = "application/json"
)

var recordKeys = []string{
	"style",
	"lighting",
	"colors",
	"camera_angle",
	"environment",
	"aspect_ratio",
	"custom_elements",
	"full_prompt",
}

// ExportJSON renders the downloadable document: two-space indented, keys in
// record order, HTML characters left as is.
func (r Record) ExportJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return nil, fmt.Errorf("export record: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ParseRecord reads a document produced by ExportJSON. Every one of the
// eight keys must be present.
func ParseRecord(data []byte) (Record, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Record{}, fmt.Errorf("parse record: %w", err)
	}
	for _, k := range recordKeys {
		if _, ok := raw[k]; !ok {
			return Record{}, fmt.Errorf("parse record: missing key %q", k)
		}
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("parse record: %w", err)
	}
	return rec, nil
}
