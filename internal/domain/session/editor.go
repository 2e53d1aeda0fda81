package session

import (
	"math"
	"strconv"
	"strings"
)

type EditState int

const (
	Viewing EditState = iota
	Editing
)

func (s EditState) String() string {
	if s == Editing {
		return "editing"
	}
	return "viewing"
}

type EditInput string

const (
	InputClick  EditInput = "click"
	InputType   EditInput = "type"
	InputBlur   EditInput = "blur"
	InputEnter  EditInput = "enter"
	InputEscape EditInput = "escape"
)

type editAction int

const (
	actionIgnore editAction = iota
	actionBegin
	actionUpdateDraft
	actionCommit
	actionRevert
)

type transition struct {
	next   EditState
	action editAction
}

// weightTransitions lists every (state, input) pair the editor reacts to.
// Pairs that are missing leave the editor untouched.
var weightTransitions = map[EditState]map[EditInput]transition{
	Viewing: {
		InputClick: {next: Editing, action: actionBegin},
	},
	Editing: {
		InputType:   {next: Editing, action: actionUpdateDraft},
		InputBlur:   {next: Viewing, action: actionCommit},
		InputEnter:  {next: Viewing, action: actionCommit},
		InputEscape: {next: Viewing, action: actionRevert},
	},
}

// WeightEditor is the inline editor of the weight field. Committed values are
// rounded to whole kilograms and handed to the commit callback; invalid input
// and Escape revert to the last confirmed value.
type WeightEditor struct {
	state     EditState
	draft     string
	confirmed *float64
	onCommit  func(weight int)
}

func NewWeightEditor(confirmed *float64, onCommit func(weight int)) *WeightEditor {
	e := &WeightEditor{onCommit: onCommit}
	e.Confirm(confirmed)
	return e
}

func (e *WeightEditor) State() EditState {
	return e.state
}

// Text is what the weight field currently shows.
func (e *WeightEditor) Text() string {
	return e.draft
}

func (e *WeightEditor) Editable() bool {
	return e.onCommit != nil
}

// Confirm replaces the last confirmed value. The draft follows it unless the
// user is typing.
func (e *WeightEditor) Confirm(weight *float64) {
	if weight == nil {
		e.confirmed = nil
	} else {
		w := *weight
		e.confirmed = &w
	}
	if e.state == Viewing {
		e.revert()
	}
}

// Handle feeds one user input to the editor and reports whether the weight
// callback fired. Non-empty text sent with blur or enter replaces the draft
// before it is committed; text is ignored for click and escape.
func (e *WeightEditor) Handle(input EditInput, text string) (committed bool) {
	t, ok := weightTransitions[e.state][input]
	if !ok {
		return false
	}

	switch t.action {
	case actionBegin:
		if !e.Editable() {
			return false
		}
	case actionUpdateDraft:
		e.draft = text
	case actionCommit:
		if text != "" {
			e.draft = text
		}
		if weight, ok := parseWeight(e.draft); ok {
			e.state = t.next
			e.onCommit(weight)
			return true
		}
		e.revert()
	case actionRevert:
		e.revert()
	}

	e.state = t.next
	return false
}

func (e *WeightEditor) clone(onCommit func(int)) *WeightEditor {
	c := &WeightEditor{
		state:    e.state,
		draft:    e.draft,
		onCommit: onCommit,
	}
	if e.confirmed != nil {
		w := *e.confirmed
		c.confirmed = &w
	}
	return c
}

func (e *WeightEditor) revert() {
	if e.confirmed == nil {
		e.draft = ""
		return
	}
	e.draft = strconv.FormatFloat(*e.confirmed, 'f', -1, 64)
}

func parseWeight(text string) (int, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	weight := int(math.Round(v))
	if weight <= 0 {
		return 0, false
	}
	return weight, true
}
