package session

import (
	"errors"
	"fmt"
	"github.com/burenotti/nutrition_counselling/internal/domain"
	"github.com/burenotti/nutrition_counselling/internal/domain/metabolic"
	"github.com/r3labs/diff"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExists   = errors.New("session already exists")
	ErrNotReady        = errors.New("metabolic data is not loaded")
	ErrReadOnly        = errors.New("session is read-only")
)

const (
	FieldActivityLevel = "activityLevel"
	FieldWeight        = "weight"
	FieldGender        = "gender"
)

type Status string

const (
	StatusLoading Status = "loading"
	StatusFailed  Status = "failed"
	StatusEmpty   Status = "empty"
	StatusReady   Status = "ready"
)

type Notes struct {
	Nutrition string
	Exercise  string
	Goals     string
}

// Session is one displayed counselling card. It owns the only in-memory copy
// of the metabolic record for as long as the card is open.
type Session struct {
	domain.Aggregate
	SessionID     string
	CounsellingID string
	ClientName    string
	Editable      bool
	Status        Status
	Record        *metabolic.Record
	Failure       string
	Notes         Notes
	NotesSavedAt  *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	weight        *WeightEditor
}

func New(sessionID, counsellingID, clientName string, editable bool) *Session {
	now := time.Now().UTC()
	s := &Session{
		SessionID:     sessionID,
		CounsellingID: counsellingID,
		ClientName:    clientName,
		Editable:      editable,
		Status:        StatusLoading,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.weight = NewWeightEditor(nil, s.weightCallback())
	s.PushEvent(OpenedEvent{
		At:            now,
		SessionID:     sessionID,
		CounsellingID: counsellingID,
	})
	return s
}

func (s *Session) ID() string {
	return s.SessionID
}

func (s *Session) WeightEditor() *WeightEditor {
	return s.weight
}

// BeginLoad switches the card back to its loading state before a re-fetch.
// The shown record is kept so the refresh can report what changed.
func (s *Session) BeginLoad() {
	s.Status = StatusLoading
	s.Failure = ""
	s.touch()
}

func (s *Session) Loaded(rec *metabolic.Record) {
	previous := s.Record
	s.Record = rec
	s.Status = StatusReady
	s.Failure = ""
	s.weight.Confirm(rec.Weight)
	s.touch()

	if previous != nil {
		changelog, err := diff.Diff(*previous, *rec)
		if err == nil && len(changelog) != 0 {
			changed := make([]string, 0, len(changelog))
			for _, c := range changelog {
				changed = append(changed, c.Path[0])
			}
			s.PushEvent(RefreshedEvent{
				At:            s.UpdatedAt,
				SessionID:     s.SessionID,
				CounsellingID: s.CounsellingID,
				Changed:       changed,
			})
		}
	}

	s.PushEvent(LoadedEvent{
		At:            s.UpdatedAt,
		SessionID:     s.SessionID,
		CounsellingID: s.CounsellingID,
		Status:        s.Status,
		Complete:      rec.IsComplete(),
	})
}

// Failed records an unsuccessful load. A missing record leaves the card
// empty; every other failure is shown as a generic load error.
func (s *Session) Failed(err error) {
	s.Record = nil
	s.weight.Confirm(nil)
	if errors.Is(err, metabolic.ErrNoData) {
		s.Status = StatusEmpty
		s.Failure = ""
	} else {
		s.Status = StatusFailed
		s.Failure = metabolic.ErrFetchFailure.Error()
	}
	s.touch()
	s.PushEvent(LoadedEvent{
		At:            s.UpdatedAt,
		SessionID:     s.SessionID,
		CounsellingID: s.CounsellingID,
		Status:        s.Status,
	})
}

// ChangeActivity stores the selected level. TDEE is left as loaded; the host
// recomputes it on the next fetch.
func (s *Session) ChangeActivity(level metabolic.ActivityLevel) error {
	if err := s.editable(); err != nil {
		return err
	}
	if !level.Valid() {
		return fmt.Errorf("%w: %d", metabolic.ErrUnknownActivityLevel, int(level))
	}
	s.Record.ActivityLevel = level
	s.changed(FieldActivityLevel, int(level))
	return nil
}

func (s *Session) ChangeGender(g metabolic.Gender) error {
	if err := s.editable(); err != nil {
		return err
	}
	if !g.Valid() {
		return fmt.Errorf("%w: %d", metabolic.ErrUnknownGender, int(g))
	}
	s.Record.Gender = g
	s.changed(FieldGender, int(g))
	return nil
}

// EditWeight forwards one input to the weight editor and reports whether a
// new weight was committed.
func (s *Session) EditWeight(input EditInput, text string) (bool, error) {
	if s.Status != StatusReady || s.Record == nil {
		return false, ErrNotReady
	}
	return s.weight.Handle(input, text), nil
}

func (s *Session) SaveNotes(notes Notes, at time.Time) {
	at = at.UTC()
	s.Notes = notes
	s.NotesSavedAt = &at
	s.touch()
	s.PushEvent(NotesSavedEvent{
		At:            at,
		SessionID:     s.SessionID,
		CounsellingID: s.CounsellingID,
		Notes:         notes,
	})
}

func (s *Session) Close() {
	s.PushEvent(ClosedEvent{
		At:            time.Now().UTC(),
		SessionID:     s.SessionID,
		CounsellingID: s.CounsellingID,
	})
}

// Clone copies the session state without its pending events.
func (s *Session) Clone() *Session {
	c := &Session{
		SessionID:     s.SessionID,
		CounsellingID: s.CounsellingID,
		ClientName:    s.ClientName,
		Editable:      s.Editable,
		Status:        s.Status,
		Record:        s.Record.Clone(),
		Failure:       s.Failure,
		Notes:         s.Notes,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if s.NotesSavedAt != nil {
		at := *s.NotesSavedAt
		c.NotesSavedAt = &at
	}
	c.weight = s.weight.clone(c.weightCallback())
	return c
}

func (s *Session) weightCallback() func(int) {
	if !s.Editable {
		return nil
	}
	return s.commitWeight
}

func (s *Session) commitWeight(weight int) {
	w := float64(weight)
	s.Record.Weight = &w
	s.weight.Confirm(&w)
	s.changed(FieldWeight, weight)
}

func (s *Session) editable() error {
	if !s.Editable {
		return ErrReadOnly
	}
	if s.Status != StatusReady || s.Record == nil {
		return ErrNotReady
	}
	return nil
}

func (s *Session) changed(field string, value any) {
	s.touch()
	s.PushEvent(FieldChangedEvent{
		At:            s.UpdatedAt,
		SessionID:     s.SessionID,
		CounsellingID: s.CounsellingID,
		Field:         field,
		Value:         value,
	})
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}
