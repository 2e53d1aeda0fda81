package metabolic

import (
	"context"
	"strings"
)

// RecordStore retrieves a counselling record and its linked member.
type RecordStore interface {
	Retrieve(ctx context.Context, counsellingID string, spec FieldSpec) (*RawRecord, error)
}

// FieldSpec names the fields selected on the counselling entity and on the
// expanded member entity.
type FieldSpec struct {
	Entity       string
	Select       []string
	Expand       string
	ExpandEntity string
	ExpandSelect []string
}

const (
	FieldBMR            = "ur_bmr"
	FieldTDEE           = "ur_tdee"
	FieldTargetCalories = "ur_targetcalories"
	FieldActivityLevel  = "ur_activitylevel"
	FieldWeight         = "ur_weight"
	FieldHeight         = "ur_height"
	FieldAge            = "ur_age"
	FieldGender         = "ur_gender"
)

// DefaultFieldSpec is the field set read for every card load.
func DefaultFieldSpec() FieldSpec {
	return FieldSpec{
		Entity:       "ur_nutritioncounselling",
		Select:       []string{FieldBMR, FieldTDEE, FieldTargetCalories, FieldActivityLevel, FieldWeight},
		Expand:       "ur_Member",
		ExpandEntity: "contact",
		ExpandSelect: []string{FieldHeight, FieldAge, FieldGender},
	}
}

// Query renders the field set as an OData query string.
func (s FieldSpec) Query() string {
	var b strings.Builder
	b.WriteString("?$select=")
	b.WriteString(strings.Join(s.Select, ","))
	if s.Expand != "" {
		b.WriteString("&$expand=")
		b.WriteString(s.Expand)
		if len(s.ExpandSelect) > 0 {
			b.WriteString("($select=")
			b.WriteString(strings.Join(s.ExpandSelect, ","))
			b.WriteString(")")
		}
	}
	return b.String()
}

// Target returns the destination for a selected field, or nil when the field
// is not part of the raw record.
func (r *RawRecord) Target(field string) any {
	switch field {
	case FieldBMR:
		return &r.BMR
	case FieldTDEE:
		return &r.TDEE
	case FieldTargetCalories:
		return &r.TargetCalories
	case FieldActivityLevel:
		return &r.ActivityLevel
	case FieldWeight:
		return &r.Weight
	case FieldHeight, FieldAge, FieldGender:
		if r.Member == nil {
			r.Member = &RawMember{}
		}
	default:
		return nil
	}
	switch field {
	case FieldHeight:
		return &r.Member.Height
	case FieldAge:
		return &r.Member.Age
	default:
		return &r.Member.Gender
	}
}
