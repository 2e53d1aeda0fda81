package session

import (
	"testing"
	"time"

	"github.com/burenotti/nutrition_counselling/internal/domain"
	"github.com/burenotti/nutrition_counselling/internal/domain/metabolic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readyRecord() *metabolic.Record {
	return &metabolic.Record{
		BMR:            weightPtr(1650),
		TDEE:           weightPtr(2310),
		TargetCalories: weightPtr(2100),
		ActivityLevel:  metabolic.ModeratelyActive,
		Weight:         weightPtr(78),
		Gender:         metabolic.Male,
	}
}

func payloads(t *testing.T, events []domain.Event) []string {
	t.Helper()
	var out []string
	for _, e := range events {
		if n, ok := e.(Notification); ok {
			p, err := n.Payload()
			require.NoError(t, err)
			out = append(out, p)
		}
	}
	return out
}

func TestSession_EditsNotifyOnlyTheChangedField(t *testing.T) {
	s := New("s1", "c1", "Anna", true)
	s.Loaded(readyRecord())
	s.PopEvents()

	require.NoError(t, s.ChangeActivity(metabolic.VeryActive))
	require.NoError(t, s.ChangeGender(metabolic.Female))

	_, err := s.EditWeight(InputClick, "")
	require.NoError(t, err)
	_, err = s.EditWeight(InputType, "82.7")
	require.NoError(t, err)
	committed, err := s.EditWeight(InputBlur, "")
	require.NoError(t, err)
	assert.True(t, committed)

	assert.Equal(t, []string{
		`{"activityLevel":3}`,
		`{"gender":1}`,
		`{"weight":83}`,
	}, payloads(t, s.PopEvents()))

	assert.Equal(t, 83.0, *s.Record.Weight)
	assert.Equal(t, "83", s.WeightEditor().Text())
	assert.Equal(t, 2310.0, *s.Record.TDEE, "activity change must not recompute tdee")
}

func TestSession_EditsBeforeLoad(t *testing.T) {
	s := New("s1", "c1", "", true)
	assert.ErrorIs(t, s.ChangeActivity(metabolic.VeryActive), ErrNotReady)
	_, err := s.EditWeight(InputClick, "")
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestSession_ReadOnly(t *testing.T) {
	s := New("s1", "c1", "", false)
	s.Loaded(readyRecord())
	assert.ErrorIs(t, s.ChangeGender(metabolic.Female), ErrReadOnly)

	committed, err := s.EditWeight(InputClick, "")
	require.NoError(t, err)
	assert.False(t, committed)
	assert.Equal(t, Viewing, s.WeightEditor().State())
}

func TestSession_RejectsUnknownCodes(t *testing.T) {
	s := New("s1", "c1", "", true)
	s.Loaded(readyRecord())
	assert.ErrorIs(t, s.ChangeActivity(metabolic.ActivityLevel(8)), metabolic.ErrUnknownActivityLevel)
	assert.ErrorIs(t, s.ChangeGender(metabolic.Gender(5)), metabolic.ErrUnknownGender)
	assert.Equal(t, metabolic.ModeratelyActive, s.Record.ActivityLevel)
}

func TestSession_Failed(t *testing.T) {
	s := New("s1", "c1", "", true)
	s.Failed(metabolic.ErrNoData)
	assert.Equal(t, StatusEmpty, s.Status)
	assert.Empty(t, s.Failure)

	s.Failed(metabolic.ErrFetchFailure)
	assert.Equal(t, StatusFailed, s.Status)
	assert.Equal(t, "data unavailable", s.Failure)
	assert.Nil(t, s.Record)
}

func TestSession_ReloadReportsChangedFields(t *testing.T) {
	s := New("s1", "c1", "", true)
	s.Loaded(readyRecord())
	s.PopEvents()

	next := readyRecord()
	next.TDEE = weightPtr(2558)
	next.Weight = weightPtr(83)
	s.BeginLoad()
	assert.Equal(t, StatusLoading, s.Status)
	s.Loaded(next)

	var refreshed *RefreshedEvent
	for _, e := range s.PopEvents() {
		if r, ok := e.(RefreshedEvent); ok {
			refreshed = &r
		}
	}
	require.NotNil(t, refreshed)
	assert.ElementsMatch(t, []string{"tdee", "weight"}, refreshed.Changed)
	assert.Equal(t, "83", s.WeightEditor().Text())
}

func TestSession_SaveNotes(t *testing.T) {
	s := New("s1", "c1", "", true)
	s.PopEvents()
	at := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	s.SaveNotes(Notes{Nutrition: "less sugar", Exercise: "walks", Goals: "-5kg"}, at)

	assert.Equal(t, []string{
		`{"nutrition":"less sugar","exercise":"walks","goals":"-5kg","timestamp":"2026-03-01T10:30:00.000Z"}`,
	}, payloads(t, s.PopEvents()))
	require.NotNil(t, s.NotesSavedAt)
}

func TestSession_CloneIsIndependent(t *testing.T) {
	s := New("s1", "c1", "", true)
	s.Loaded(readyRecord())
	s.PopEvents()

	c := s.Clone()
	assert.Zero(t, c.PendingEvents())
	_, _ = c.EditWeight(InputClick, "")
	_, _ = c.EditWeight(InputType, "90")
	_, _ = c.EditWeight(InputEnter, "")

	assert.Equal(t, 90.0, *c.Record.Weight)
	assert.Equal(t, 78.0, *s.Record.Weight)
	assert.Zero(t, s.PendingEvents())
	assert.Equal(t, 1, c.PendingEvents())
}
