package metabolic

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrFetchFailure   = errors.New("data unavailable")
	ErrNoData         = errors.New("no data available")
	ErrIncompleteData = errors.New("incomplete metabolic data")
	ErrRecordNotFound = errors.New("record not found")
	ErrAccessDenied   = errors.New("access to record denied")
)

// Record is the metabolic information shown on a counselling card.
// Energy values are kcal/day, weight is kg, height is cm.
type Record struct {
	BMR            *float64      `json:"bmr" diff:"bmr"`
	TDEE           *float64      `json:"tdee" diff:"tdee"`
	TargetCalories *float64      `json:"targetCalories" diff:"targetCalories"`
	ActivityLevel  ActivityLevel `json:"activityLevel" diff:"activityLevel"`
	Weight         *float64      `json:"weight" diff:"weight"`
	Height         *float64      `json:"height" diff:"height"`
	Age            *int          `json:"age" diff:"age"`
	Gender         Gender        `json:"gender" diff:"gender"`
}

// RawRecord holds the field values exactly as the record store returned them.
type RawRecord struct {
	BMR            *float64
	TDEE           *float64
	TargetCalories *float64
	ActivityLevel  *int
	Weight         *float64
	Member         *RawMember
}

type RawMember struct {
	Height *float64
	Age    *int
	Gender *int
}

// DeriveAndValidate builds a Record from raw store values. TDEE is derived
// from BMR only when BMR is present and TDEE is not.
func DeriveAndValidate(raw *RawRecord) (*Record, error) {
	if raw == nil {
		return nil, ErrNoData
	}

	r := &Record{
		BMR:            positive(raw.BMR),
		TDEE:           positive(raw.TDEE),
		TargetCalories: positive(raw.TargetCalories),
		ActivityLevel:  Sedentary,
		Weight:         positive(raw.Weight),
		Gender:         Other,
	}

	if raw.ActivityLevel != nil {
		level, err := ParseActivityLevel(*raw.ActivityLevel)
		if err != nil {
			return nil, err
		}
		r.ActivityLevel = level
	}

	if m := raw.Member; m != nil {
		r.Height = positive(m.Height)
		if m.Age != nil && *m.Age > 0 {
			age := *m.Age
			r.Age = &age
		}
		if m.Gender != nil {
			g, err := ParseGender(*m.Gender)
			if err != nil {
				return nil, err
			}
			r.Gender = g
		}
	}

	if r.BMR != nil && r.TDEE == nil {
		tdee, err := CalculateTDEE(*r.BMR, r.ActivityLevel)
		if err != nil {
			return nil, err
		}
		r.TDEE = &tdee
	}

	return r, nil
}

// CalculateTDEE returns round(bmr × PAL multiplier).
func CalculateTDEE(bmr float64, level ActivityLevel) (float64, error) {
	multiplier, err := level.Multiplier()
	if err != nil {
		return 0, err
	}
	return math.Round(bmr * multiplier), nil
}

func (r *Record) IsComplete() bool {
	return r.BMR != nil && r.TDEE != nil && r.TargetCalories != nil
}

// Validate reports missing energy metrics. The result is advisory and never
// blocks editing.
func (r *Record) Validate() error {
	var missing []string
	if r.BMR == nil {
		missing = append(missing, "bmr")
	}
	if r.TDEE == nil {
		missing = append(missing, "tdee")
	}
	if r.TargetCalories == nil {
		missing = append(missing, "targetCalories")
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: missing %s", ErrIncompleteData, strings.Join(missing, ", "))
}

func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	return &Record{
		BMR:            clonePtr(r.BMR),
		TDEE:           clonePtr(r.TDEE),
		TargetCalories: clonePtr(r.TargetCalories),
		ActivityLevel:  r.ActivityLevel,
		Weight:         clonePtr(r.Weight),
		Height:         clonePtr(r.Height),
		Age:            clonePtr(r.Age),
		Gender:         r.Gender,
	}
}

// positive treats zero, negative and non-finite values as absent.
func positive(v *float64) *float64 {
	if v == nil || *v <= 0 || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	val := *v
	return &val
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
