package promptbuilder

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Field is one of the six categorical prompt attributes.
type Field int

const (
	AspectRatio Field = iota
	Style
	Environment
	Lighting
	ColorScheme
	CameraAngle
)

var fieldKeys = [...]string{
	AspectRatio: "aspect_ratio",
	Style:       "style",
	Environment: "environment",
	Lighting:    "lighting",
	ColorScheme: "colors",
	CameraAngle: "camera_angle",
}

// AllFields is the render order: the "Basic Settings" column first, then
// "Visual Controls".
var AllFields = []Field{AspectRatio, Style, Environment, Lighting, ColorScheme, CameraAngle}

func (f Field) Key() string {
	if f < 0 || int(f) >= len(fieldKeys) {
		return ""
	}
	return fieldKeys[f]
}

func (f Field) String() string {
	return f.Key()
}

// Column reports which form column the field belongs to.
func (f Field) Column() string {
	if f <= Environment {
		return "Basic Settings"
	}
	return "Visual Controls"
}

func ParseField(key string) (Field, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for i, k := range fieldKeys {
		if k == key {
			return Field(i), true
		}
	}
	return 0, false
}

type FieldSpec struct {
	Field   Field
	Label   string
	Help    string
	Options []string
	Default string
}

func (s FieldSpec) Key() string {
	return s.Field.Key()
}

// Extended returns the options followed by the "Custom..." entry, the list a
// selection control shows.
func (s FieldSpec) Extended() []string {
	out := make([]string, 0, len(s.Options)+1)
	out = append(out, s.Options...)
	return append(out, CustomOption)
}

func (s FieldSpec) HasOption(value string) bool {
	for _, o := range s.Options {
		if o == value {
			return true
		}
	}
	return false
}

func (s FieldSpec) clone() FieldSpec {
	s.Options = append([]string(nil), s.Options...)
	return s
}

type Catalog struct {
	specs [len(fieldKeys)]FieldSpec
}

var builtinSpecs = []FieldSpec{
	{
		Field:   AspectRatio,
		Label:   "Aspect Ratio",
		Help:    "Choose the image dimensions",
		Options: []string{"16:9", "1:1", "4:3", "3:2", "9:16"},
		Default: "16:9",
	},
	{
		Field:   Style,
		Label:   "Art Style",
		Help:    "Select the artistic style",
		Options: []string{"photorealistic", "digital art", "oil painting", "sketch", "watercolor", "anime", "comic book"},
		Default: "photorealistic",
	},
	{
		Field:   Environment,
		Label:   "Environment",
		Help:    "Choose the setting",
		Options: []string{"studio", "outdoor", "urban", "nature", "indoor", "abstract background"},
		Default: "studio",
	},
	{
		Field:   Lighting,
		Label:   "Lighting",
		Help:    "Select lighting style",
		Options: []string{"natural", "dramatic", "soft", "harsh", "golden hour", "blue hour", "neon"},
		Default: "natural",
	},
	{
		Field:   ColorScheme,
		Label:   "Color Scheme",
		Help:    "Choose color palette",
		Options: []string{"vibrant", "muted", "monochrome", "warm tones", "cool tones", "pastel", "high contrast"},
		Default: "vibrant",
	},
	{
		Field:   CameraAngle,
		Label:   "Camera Angle",
		Help:    "Select camera perspective",
		Options: []string{"front view", "side view", "low angle", "high angle", "close-up", "wide shot"},
		Default: "front view",
	},
}

func DefaultCatalog() *Catalog {
	c := &Catalog{}
	for _, s := range builtinSpecs {
		c.specs[s.Field] = s.clone()
	}
	return c
}

func (c *Catalog) Spec(f Field) FieldSpec {
	if f < 0 || int(f) >= len(c.specs) {
		return FieldSpec{}
	}
	return c.specs[f].clone()
}

func (c *Catalog) Fields() []FieldSpec {
	out := make([]FieldSpec, 0, len(AllFields))
	for _, f := range AllFields {
		out = append(out, c.Spec(f))
	}
	return out
}

// DefaultSelection is the selection a freshly rendered form starts with.
func (c *Catalog) DefaultSelection() Selection {
	var sel Selection
	for _, f := range AllFields {
		sel.Set(f, DefaultChoice(c.specs[f]))
	}
	return sel
}

type catalogFile struct {
	Version int                `yaml:"version"`
	Fields  []catalogFileField `yaml:"fields"`
}

type catalogFileField struct {
	Key     string   `yaml:"key"`
	Label   string   `yaml:"label"`
	Help    string   `yaml:"help"`
	Default string   `yaml:"default"`
	Options []string `yaml:"options"`
}

// LoadCatalog reads a YAML override file. Fields the file does not mention
// keep their built-in definition. An empty path yields the built-in catalog.
func LoadCatalog(path string) (*Catalog, error) {
	c := DefaultCatalog()
	path = strings.TrimSpace(path)
	if path == "" {
		return c, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	if err := c.apply(b); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) apply(data []byte) error {
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return fmt.Errorf("catalog: parse: %w", err)
	}
	if cf.Version != 1 {
		return errors.New("catalog: unsupported version")
	}

	for _, ff := range cf.Fields {
		f, ok := ParseField(ff.Key)
		if !ok {
			return fmt.Errorf("catalog: unknown field %q", ff.Key)
		}

		spec := c.specs[f]
		if len(ff.Options) > 0 {
			spec.Options = nil
			for _, o := range ff.Options {
				if o = strings.TrimSpace(o); o != "" && o != CustomOption {
					spec.Options = append(spec.Options, o)
				}
			}
		}
		if len(spec.Options) == 0 {
			return fmt.Errorf("catalog: field %q has no options", ff.Key)
		}
		if v := strings.TrimSpace(ff.Label); v != "" {
			spec.Label = v
		}
		if v := strings.TrimSpace(ff.Help); v != "" {
			spec.Help = v
		}
		if ff.Default != "" {
			spec.Default = ff.Default
		} else if len(ff.Options) > 0 && !spec.HasOption(spec.Default) {
			spec.Default = spec.Options[0]
		}
		c.specs[f] = spec
	}
	return nil
}
