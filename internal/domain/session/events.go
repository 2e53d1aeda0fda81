package session

import (
	"encoding/json"
	"time"
)

const (
	EventOpened       = "session.opened"
	EventLoaded       = "session.loaded"
	EventRefreshed    = "session.refreshed"
	EventFieldChanged = "session.field_changed"
	EventNotesSaved   = "session.notes_saved"
	EventClosed       = "session.closed"
)

// Notification is an event the host must receive as a change notification.
type Notification interface {
	Type() string
	PublishedAt() time.Time
	Payload() (string, error)
}

type OpenedEvent struct {
	At            time.Time
	SessionID     string
	CounsellingID string
}

func (e OpenedEvent) Type() string {
	return EventOpened
}

func (e OpenedEvent) PublishedAt() time.Time {
	return e.At
}

type LoadedEvent struct {
	At            time.Time
	SessionID     string
	CounsellingID string
	Status        Status
	Complete      bool
}

func (e LoadedEvent) Type() string {
	return EventLoaded
}

func (e LoadedEvent) PublishedAt() time.Time {
	return e.At
}

// RefreshedEvent is pushed when a reload replaced an already shown record.
type RefreshedEvent struct {
	At            time.Time
	SessionID     string
	CounsellingID string
	Changed       []string
}

func (e RefreshedEvent) Type() string {
	return EventRefreshed
}

func (e RefreshedEvent) PublishedAt() time.Time {
	return e.At
}

// FieldChangedEvent carries exactly one edited field.
type FieldChangedEvent struct {
	At            time.Time
	SessionID     string
	CounsellingID string
	Field         string
	Value         any
}

func (e FieldChangedEvent) Type() string {
	return EventFieldChanged
}

func (e FieldChangedEvent) PublishedAt() time.Time {
	return e.At
}

func (e FieldChangedEvent) Payload() (string, error) {
	data, err := json.Marshal(map[string]any{e.Field: e.Value})
	return string(data), err
}

type NotesSavedEvent struct {
	At            time.Time
	SessionID     string
	CounsellingID string
	Notes         Notes
}

func (e NotesSavedEvent) Type() string {
	return EventNotesSaved
}

func (e NotesSavedEvent) PublishedAt() time.Time {
	return e.At
}

func (e NotesSavedEvent) Payload() (string, error) {
	data, err := json.Marshal(struct {
		Nutrition string `json:"nutrition"`
		Exercise  string `json:"exercise"`
		Goals     string `json:"goals"`
		Timestamp string `json:"timestamp"`
	}{
		Nutrition: e.Notes.Nutrition,
		Exercise:  e.Notes.Exercise,
		Goals:     e.Notes.Goals,
		Timestamp: e.At.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	})
	return string(data), err
}

type ClosedEvent struct {
	At            time.Time
	SessionID     string
	CounsellingID string
}

func (e ClosedEvent) Type() string {
	return EventClosed
}

func (e ClosedEvent) PublishedAt() time.Time {
	return e.At
}

func (e FieldChangedEvent) Reference() (sessionID, counsellingID string) {
	return e.SessionID, e.CounsellingID
}

func (e NotesSavedEvent) Reference() (sessionID, counsellingID string) {
	return e.SessionID, e.CounsellingID
}
