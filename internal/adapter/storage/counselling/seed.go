package counsellingstorage

import (
	"context"
	"github.com/burenotti/nutrition_counselling/internal/adapter/storage/pgutil"
	"github.com/leporo/sqlf"
)

const Schema = `
CREATE TABLE IF NOT EXISTS contact (
	contactid  uuid PRIMARY KEY,
	fullname   text NOT NULL DEFAULT '',
	ur_height  numeric,
	ur_age     integer,
	ur_gender  integer
);

CREATE TABLE IF NOT EXISTS ur_nutritioncounselling (
	ur_nutritioncounsellingid uuid PRIMARY KEY,
	ur_member                 uuid REFERENCES contact (contactid),
	ur_bmr                    numeric,
	ur_tdee                   numeric,
	ur_targetcalories         numeric,
	ur_activitylevel          integer,
	ur_weight                 numeric
);
`

// Fixture is one counselling record together with its member.
type Fixture struct {
	CounsellingID  string
	MemberID       string
	FullName       string
	BMR            *float64
	TDEE           *float64
	TargetCalories *float64
	ActivityLevel  *int
	Weight         *float64
	Height         *float64
	Age            *int
	Gender         *int
}

// Upsert writes a fixture, overwriting rows that already exist. It relies on
// failed inserts not aborting the session, so it must not run inside a
// transaction.
func (s *PostgresStorage) Upsert(ctx context.Context, f Fixture) error {
	member := sqlf.InsertInto("contact").
		Set("contactid", f.MemberID).
		Set("fullname", f.FullName).
		Set("ur_height", f.Height).
		Set("ur_age", f.Age).
		Set("ur_gender", f.Gender)

	if _, err := member.ExecAndClose(ctx, s.db); err != nil {
		if !pgutil.ViolatesConstraint(err, "contact_pkey") {
			return err
		}
		upd := sqlf.Update("contact").
			Where("contactid = ?", f.MemberID).
			Set("fullname", f.FullName).
			Set("ur_height", f.Height).
			Set("ur_age", f.Age).
			Set("ur_gender", f.Gender)
		res, err := upd.ExecAndClose(ctx, s.db)
		if err := pgutil.AssertUpdated(res, err, errNotUpdated); err != nil {
			return err
		}
	}

	rec := sqlf.InsertInto("ur_nutritioncounselling").
		Set("ur_nutritioncounsellingid", f.CounsellingID).
		Set("ur_member", f.MemberID).
		Set("ur_bmr", f.BMR).
		Set("ur_tdee", f.TDEE).
		Set("ur_targetcalories", f.TargetCalories).
		Set("ur_activitylevel", f.ActivityLevel).
		Set("ur_weight", f.Weight)

	if _, err := rec.ExecAndClose(ctx, s.db); err != nil {
		if !pgutil.ViolatesConstraint(err, "ur_nutritioncounselling_pkey") {
			return err
		}
		upd := sqlf.Update("ur_nutritioncounselling").
			Where("ur_nutritioncounsellingid = ?", f.CounsellingID).
			Set("ur_member", f.MemberID).
			Set("ur_bmr", f.BMR).
			Set("ur_tdee", f.TDEE).
			Set("ur_targetcalories", f.TargetCalories).
			Set("ur_activitylevel", f.ActivityLevel).
			Set("ur_weight", f.Weight)
		res, err := upd.ExecAndClose(ctx, s.db)
		return pgutil.AssertUpdated(res, err, errNotUpdated)
	}
	return nil
}

func (s *PostgresStorage) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, Schema)
	return err
}
