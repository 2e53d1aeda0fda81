// Package card builds the view model of the metabolic information card.
package card

import (
	"github.com/burenotti/nutrition_counselling/internal/domain/metabolic"
	"github.com/burenotti/nutrition_counselling/internal/domain/session"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"math"
	"strconv"
)

const (
	Placeholder = "—"

	TitleLoading    = "Loading metabolic data..."
	TitleError      = "Failed to Load Data"
	TitleNoData     = "No Data Available"
	TitleIncomplete = "Incomplete Data"

	textNoData     = "Metabolic information is not available for this counselling session."
	textIncomplete = "Some metabolic values are missing. Please update member profile."
	textNotesSaved = "Counselling notes saved successfully!"
)

type State string

const (
	StateLoading State = "loading"
	StateError   State = "error"
	StateEmpty   State = "empty"
	StateReady   State = "ready"
)

type Intent string

const (
	IntentError   Intent = "error"
	IntentInfo    Intent = "info"
	IntentWarning Intent = "warning"
	IntentSuccess Intent = "success"
)

// Controls marks which inputs the card offers. Edits themselves go through
// the session service.
type Controls struct {
	Activity bool
	Weight   bool
	Gender   bool
}

type Props struct {
	Record     *metabolic.Record
	IsLoading  bool
	Err        error
	ClientName string
	Weight     *session.WeightEditor
	Controls   Controls
	Notes      session.Notes
	NotesSaved bool
}

type Message struct {
	Intent Intent `json:"intent"`
	Title  string `json:"title"`
	Text   string `json:"text,omitempty"`
}

type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type WeightField struct {
	Label     string `json:"label"`
	Value     string `json:"value"`
	Editing   bool   `json:"editing"`
	Draft     string `json:"draft,omitempty"`
	Clickable bool   `json:"clickable"`
}

type Badge struct {
	Code      int    `json:"code"`
	Label     string `json:"label"`
	Selected  bool   `json:"selected"`
	Clickable bool   `json:"clickable"`
}

type NotesForm struct {
	Nutrition string `json:"nutrition"`
	Exercise  string `json:"exercise"`
	Goals     string `json:"goals"`
}

type Card struct {
	State      State        `json:"state"`
	Title      string       `json:"title"`
	ClientName string       `json:"client_name,omitempty"`
	Messages   []Message    `json:"messages,omitempty"`
	Height     *Field       `json:"height,omitempty"`
	Weight     *WeightField `json:"weight,omitempty"`
	Age        *Field       `json:"age,omitempty"`
	Gender     []Badge      `json:"gender,omitempty"`
	Activity   []Badge      `json:"activity,omitempty"`
	Metrics    []Field      `json:"metrics,omitempty"`
	Notes      NotesForm    `json:"notes"`
}

var genderChoices = []metabolic.Gender{metabolic.Male, metabolic.Female}

// Render builds the card for the given load state. Loading wins over an
// error, and an error wins over a missing record.
func Render(p Props) Card {
	c := Card{
		Title:      "Metabolic Information",
		ClientName: p.ClientName,
		Notes: NotesForm{
			Nutrition: p.Notes.Nutrition,
			Exercise:  p.Notes.Exercise,
			Goals:     p.Notes.Goals,
		},
	}
	if p.NotesSaved {
		c.Messages = append(c.Messages, Message{Intent: IntentSuccess, Title: textNotesSaved})
	}

	switch {
	case p.IsLoading:
		c.State = StateLoading
		c.Messages = append(c.Messages, Message{Intent: IntentInfo, Title: TitleLoading})
		return c
	case p.Err != nil:
		c.State = StateError
		c.Messages = append(c.Messages, Message{Intent: IntentError, Title: TitleError, Text: p.Err.Error()})
		return c
	case p.Record == nil:
		c.State = StateEmpty
		c.Messages = append(c.Messages, Message{Intent: IntentInfo, Title: TitleNoData, Text: textNoData})
		return c
	}

	r := p.Record
	c.State = StateReady
	if !r.IsComplete() {
		c.Messages = append(c.Messages, Message{Intent: IntentWarning, Title: TitleIncomplete, Text: textIncomplete})
	}

	c.Height = &Field{Label: "Height", Value: withUnit(formatNumber(r.Height), "cm")}
	c.Age = &Field{Label: "Age", Value: withUnit(formatInt(r.Age), "yrs")}
	c.Weight = renderWeight(r, p.Weight, p.Controls.Weight)

	c.Gender = lo.Map(genderChoices, func(g metabolic.Gender, _ int) Badge {
		return Badge{
			Code:      int(g),
			Label:     g.Label(),
			Selected:  g == r.Gender,
			Clickable: p.Controls.Gender,
		}
	})
	c.Activity = lo.Map(metabolic.ActivityLevels(), func(l metabolic.ActivityLevel, _ int) Badge {
		return Badge{
			Code:      int(l),
			Label:     l.Label(),
			Selected:  l == r.ActivityLevel,
			Clickable: p.Controls.Activity,
		}
	})

	c.Metrics = []Field{
		{Label: "BMR (Basal Metabolic Rate)", Value: formatEnergy(r.BMR)},
		{Label: "TDEE (Total Daily Energy Expenditure)", Value: formatEnergy(r.TDEE)},
		{Label: "Target Calories", Value: formatEnergy(r.TargetCalories)},
	}
	return c
}

func renderWeight(r *metabolic.Record, editor *session.WeightEditor, clickable bool) *WeightField {
	f := &WeightField{
		Label:     "Weight",
		Value:     withUnit(formatNumber(r.Weight), "kg"),
		Clickable: clickable,
	}
	if editor != nil && editor.State() == session.Editing {
		f.Editing = true
		f.Draft = editor.Text()
	}
	return f
}

func withUnit(value, unit string) string {
	return value + " " + unit
}

func formatEnergy(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return humanize.CommafWithDigits(*v, 2) + " kcal/day"
}

func formatNumber(v *float64) string {
	if v == nil {
		return Placeholder
	}
	if *v == math.Trunc(*v) {
		return strconv.FormatInt(int64(*v), 10)
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return Placeholder
	}
	return strconv.Itoa(*v)
}
