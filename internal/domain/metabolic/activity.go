package metabolic

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownActivityLevel = errors.New("unknown activity level")
	ErrUnknownGender        = errors.New("unknown gender")
)

// ActivityLevel is the physical activity level (PAL) category of a member.
// The integer values are the option codes used by the record store.
type ActivityLevel int

const (
	Sedentary ActivityLevel = iota
	LightlyActive
	ModeratelyActive
	VeryActive
	ExtraActive
)

type activityInfo struct {
	label      string
	multiplier float64
}

var activityTable = map[ActivityLevel]activityInfo{
	Sedentary:        {label: "Sedentary", multiplier: 1.2},
	LightlyActive:    {label: "Lightly Active", multiplier: 1.375},
	ModeratelyActive: {label: "Moderately Active", multiplier: 1.55},
	VeryActive:       {label: "Very Active", multiplier: 1.725},
	ExtraActive:      {label: "Extra Active", multiplier: 1.9},
}

// ActivityLevels returns every activity level in display order.
func ActivityLevels() []ActivityLevel {
	return []ActivityLevel{Sedentary, LightlyActive, ModeratelyActive, VeryActive, ExtraActive}
}

// ParseActivityLevel converts a store option code into an ActivityLevel.
// Codes outside the table are rejected.
func ParseActivityLevel(code int) (ActivityLevel, error) {
	level := ActivityLevel(code)
	if !level.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownActivityLevel, code)
	}
	return level, nil
}

func (l ActivityLevel) Valid() bool {
	_, ok := activityTable[l]
	return ok
}

func (l ActivityLevel) Multiplier() (float64, error) {
	info, ok := activityTable[l]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownActivityLevel, int(l))
	}
	return info.multiplier, nil
}

func (l ActivityLevel) Label() string {
	if info, ok := activityTable[l]; ok {
		return info.label
	}
	return fmt.Sprintf("ActivityLevel(%d)", int(l))
}

func (l ActivityLevel) String() string {
	return l.Label()
}

type Gender int

const (
	Male Gender = iota
	Female
	Other
)

var genderLabels = map[Gender]string{
	Male:   "Male",
	Female: "Female",
	Other:  "Other",
}

func ParseGender(code int) (Gender, error) {
	g := Gender(code)
	if !g.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnknownGender, code)
	}
	return g, nil
}

func (g Gender) Valid() bool {
	_, ok := genderLabels[g]
	return ok
}

func (g Gender) Label() string {
	if label, ok := genderLabels[g]; ok {
		return label
	}
	return fmt.Sprintf("Gender(%d)", int(g))
}

func (g Gender) String() string {
	return g.Label()
}
