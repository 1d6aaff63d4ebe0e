package promptbuilder

// CustomOption is the entry appended to every option list that switches a
// field to free text. It only appears at the UI boundary.
const CustomOption = "Custom..."

// Choice is either a predefined option or user-supplied text.
type Choice struct {
	value  string
	custom bool
}

func Predefined(value string) Choice {
	return Choice{value: value}
}

func Custom(text string) Choice {
	return Choice{value: text, custom: true}
}

func (c Choice) IsCustom() bool {
	return c.custom
}

// Resolve returns the string used for the field. A custom choice with no
// text resolves to "".
func (c Choice) Resolve() string {
	return c.value
}

// DefaultIndex is the position of def in options+[CustomOption], or the
// position of CustomOption when def is not listed.
func DefaultIndex(options []string, def string) int {
	for i, o := range options {
		if o == def {
			return i
		}
	}
	return len(options)
}

// DefaultChoice is the initial choice for a field. A default that is not a
// listed option prefills the custom text.
func DefaultChoice(spec FieldSpec) Choice {
	if spec.HasOption(spec.Default) {
		return Predefined(spec.Default)
	}
	return Custom(spec.Default)
}

// ParseSelection converts a raw control value into a Choice.
func ParseSelection(selection, customText string) Choice {
	if selection == CustomOption {
		return Custom(customText)
	}
	return Predefined(selection)
}

// Index is the position of the choice within spec's extended option list.
func (c Choice) Index(spec FieldSpec) int {
	if c.custom {
		return len(spec.Options)
	}
	return DefaultIndex(spec.Options, c.value)
}

// CustomText is the text to prefill the custom input with.
func (c Choice) CustomText() string {
	if c.custom {
		return c.value
	}
	return ""
}
