package web

import (
	"net/url"

	"image-prompt-builder/internal/promptbuilder"
)

const (
	detailsField = "details"
	recordField  = "record"
	customSuffix = "_custom"
)

// selectionFromForm reads one select and one custom text input per field.
// Fields missing from the form keep their catalog default.
func selectionFromForm(cat *promptbuilder.Catalog, form url.Values) promptbuilder.Selection {
	sel := cat.DefaultSelection()
	for _, spec := range cat.Fields() {
		if _, ok := form[spec.Key()]; !ok {
			continue
		}
		sel.Set(spec.Field, promptbuilder.ParseSelection(form.Get(spec.Key()), form.Get(spec.Key()+customSuffix)))
	}
	sel.Details = form.Get(detailsField)
	return sel
}

type pageView struct {
	Columns      []columnView
	Details      string
	CustomOption string
	Result       *resultView
}

type columnView struct {
	Title  string
	Fields []fieldView
}

type fieldView struct {
	Key        string
	Label      string
	Help       string
	Options    []optionView
	Custom     bool
	CustomText string
}

type optionView struct {
	Value    string
	Selected bool
}

type resultView struct {
	Prompt  string
	Details string
}

func newPageView(cat *promptbuilder.Catalog, sel promptbuilder.Selection, rec *promptbuilder.Record) (pageView, error) {
	view := pageView{
		Details:      sel.Details,
		CustomOption: promptbuilder.CustomOption,
	}

	for _, spec := range cat.Fields() {
		choice := sel.Get(spec.Field)
		idx := choice.Index(spec)

		fv := fieldView{
			Key:        spec.Key(),
			Label:      spec.Label,
			Help:       spec.Help,
			Custom:     choice.IsCustom(),
			CustomText: choice.CustomText(),
		}
		for i, o := range spec.Extended() {
			fv.Options = append(fv.Options, optionView{Value: o, Selected: i == idx})
		}

		title := spec.Field.Column()
		if n := len(view.Columns); n == 0 || view.Columns[n-1].Title != title {
			view.Columns = append(view.Columns, columnView{Title: title})
		}
		col := &view.Columns[len(view.Columns)-1]
		col.Fields = append(col.Fields, fv)
	}

	if rec != nil {
		data, err := rec.ExportJSON()
		if err != nil {
			return pageView{}, err
		}
		view.Result = &resultView{Prompt: rec.FullPrompt, Details: string(data)}
	}
	return view, nil
}

type choiceRequest struct {
	Value  string `json:"value"`
	Custom bool   `json:"custom"`
}

type promptRequest struct {
	AspectRatio *choiceRequest `json:"aspect_ratio"`
	Style       *choiceRequest `json:"style"`
	Environment *choiceRequest `json:"environment"`
	Lighting    *choiceRequest `json:"lighting"`
	Colors      *choiceRequest `json:"colors"`
	CameraAngle *choiceRequest `json:"camera_angle"`
	Details     string         `json:"details"`
}

func (r promptRequest) selection(cat *promptbuilder.Catalog) promptbuilder.Selection {
	sel := cat.DefaultSelection()
	for f, c := range map[promptbuilder.Field]*choiceRequest{
		promptbuilder.AspectRatio: r.AspectRatio,
		promptbuilder.Style:       r.Style,
		promptbuilder.Environment: r.Environment,
		promptbuilder.Lighting:    r.Lighting,
		promptbuilder.ColorScheme: r.Colors,
		promptbuilder.CameraAngle: r.CameraAngle,
	} {
		if c == nil {
			continue
		}
		if c.Custom {
			sel.Set(f, promptbuilder.Custom(c.Value))
		} else {
			sel.Set(f, promptbuilder.Predefined(c.Value))
		}
	}
	sel.Details = r.Details
	return sel
}

type catalogField struct {
	Key          string   `json:"key"`
	Label        string   `json:"label"`
	Help         string   `json:"help"`
	Column       string   `json:"column"`
	Options      []string `json:"options"`
	Default      string   `json:"default"`
	DefaultIndex int      `json:"default_index"`
}

func catalogResponse(cat *promptbuilder.Catalog) []catalogField {
	specs := cat.Fields()
	out := make([]catalogField, 0, len(specs))
	for _, spec := range specs {
		out = append(out, catalogField{
			Key:          spec.Key(),
			Label:        spec.Label,
			Help:         spec.Help,
			Column:       spec.Field.Column(),
			Options:      spec.Extended(),
			Default:      spec.Default,
			DefaultIndex: promptbuilder.DefaultIndex(spec.Options, spec.Default),
		})
	}
	return out
}
