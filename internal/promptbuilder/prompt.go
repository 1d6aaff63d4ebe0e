package promptbuilder

import (
	"strings"
)

// NoCustomElements stands in for empty details in the structured record.
const NoCustomElements = "None"

// Selection is the full state of the form: one choice per field plus the
// free-text details.
type Selection struct {
	Choices [len(fieldKeys)]Choice
	Details string
}

func (s Selection) Get(f Field) Choice {
	if f < 0 || int(f) >= len(s.Choices) {
		return Choice{}
	}
	return s.Choices[f]
}

func (s *Selection) Set(f Field, c Choice) {
	if f < 0 || int(f) >= len(s.Choices) {
		return
	}
	s.Choices[f] = c
}

func (s Selection) Resolve(f Field) string {
	return s.Get(f).Resolve()
}

// Record is the structured representation of one generated prompt. Field
// order matches the exported JSON document.
type Record struct {
	Style          string `json:"style"`
	Lighting       string `json:"lighting"`
	Colors         string `json:"colors"`
	CameraAngle    string `json:"camera_angle"`
	Environment    string `json:"environment"`
	AspectRatio    string `json:"aspect_ratio"`
	CustomElements string `json:"custom_elements"`
	FullPrompt     string `json:"full_prompt"`
}

// Assemble resolves every field and builds the record. It has no side
// effects.
func Assemble(sel Selection) Record {
	rec := Record{
		Style:          sel.Resolve(Style),
		Lighting:       sel.Resolve(Lighting),
		Colors:         sel.Resolve(ColorScheme),
		CameraAngle:    sel.Resolve(CameraAngle),
		Environment:    sel.Resolve(Environment),
		AspectRatio:    sel.Resolve(AspectRatio),
		CustomElements: NoCustomElements,
	}
	if sel.Details != "" {
		rec.CustomElements = sel.Details
	}
	rec.FullPrompt = strings.Join(segments(sel.Details, rec), ", ")
	return rec
}

// Segments returns the prompt parts in order: details (when present), style,
// lighting, colors, camera angle, environment, aspect ratio.
func (r Record) Segments() []string {
	details := r.CustomElements
	if details == NoCustomElements {
		details = ""
	}
	return segments(details, r)
}

func segments(details string, r Record) []string {
	out := make([]string, 0, 7)
	if details != "" {
		out = append(out, details)
	}
	return append(out,
		r.Style+" style",
		r.Lighting+" lighting",
		r.Colors+" color scheme",
		r.CameraAngle,
		"set in "+r.Environment,
		"aspect ratio "+r.AspectRatio,
	)
}

// Value returns the resolved value for f.
func (r Record) Value(f Field) string {
	switch f {
	case AspectRatio:
		return r.AspectRatio
	case Style:
		return r.Style
	case Environment:
		return r.Environment
	case Lighting:
		return r.Lighting
	case ColorScheme:
		return r.Colors
	case CameraAngle:
		return r.CameraAngle
	}
	return ""
}
