package promptbuilder

import (
	"strings"
	"unicode"
)

var fieldAliases = map[string]Field{
	"ar":     AspectRatio,
	"aspect": AspectRatio,
	"ratio":  AspectRatio,
	"env":    Environment,
	"light":  Lighting,
	"color":  ColorScheme,
	"camera": CameraAngle,
	"angle":  CameraAngle,
}

// ParseArgs applies a one-line description such as
//
//	style=anime lighting="golden hour" ar=1:1 a red fox
//
// on top of defaults. key=value tokens select a field; values that are not
// listed options become custom text. Bare tokens naming an option of exactly
// one field select it. Everything else becomes the details.
func (c *Catalog) ParseArgs(raw string, defaults Selection) Selection {
	sel := defaults
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return sel
	}

	var details []string
	for _, tok := range splitArgs(raw) {
		if key, value, ok := strings.Cut(tok, "="); ok {
			if f, ok := lookupField(key); ok {
				sel.Set(f, c.choiceFor(f, value))
				continue
			}
		}

		if f, option, ok := c.uniqueOption(tok); ok {
			sel.Set(f, Predefined(option))
			continue
		}

		details = append(details, tok)
	}

	if len(details) > 0 {
		sel.Details = strings.Join(details, " ")
	}
	return sel
}

func lookupField(key string) (Field, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	if f, ok := ParseField(key); ok {
		return f, true
	}
	f, ok := fieldAliases[key]
	return f, ok
}

func (c *Catalog) choiceFor(f Field, value string) Choice {
	value = strings.TrimSpace(value)
	for _, o := range c.specs[f].Options {
		if strings.EqualFold(o, value) {
			return Predefined(o)
		}
	}
	return Custom(value)
}

func (c *Catalog) uniqueOption(tok string) (Field, string, bool) {
	var (
		found  Field
		option string
		n      int
	)
	for _, f := range AllFields {
		for _, o := range c.specs[f].Options {
			if strings.EqualFold(o, tok) {
				found, option = f, o
				n++
				break
			}
		}
	}
	return found, option, n == 1
}

// splitArgs splits on whitespace; double quotes group words and are removed.
func splitArgs(raw string) []string {
	var (
		out     []string
		buf     strings.Builder
		quoted  bool
		pending bool
	)
	flush := func() {
		if pending {
			out = append(out, buf.String())
		}
		buf.Reset()
		pending = false
	}

	for _, r := range raw {
		switch {
		case r == '"':
			quoted = !quoted
			pending = true
		case unicode.IsSpace(r) && !quoted:
			flush()
		default:
			buf.WriteRune(r)
			pending = true
		}
	}
	flush()
	return out
}
