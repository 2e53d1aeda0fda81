package sessionstorage

import (
	"context"
	"errors"
	"github.com/burenotti/nutrition_counselling/internal/domain"
	"github.com/burenotti/nutrition_counselling/internal/domain/session"
	"sync"
)

var ErrTxDone = errors.New("transaction already finished")

// MemoryStorage keeps open sessions in process memory. A transaction holds
// the storage lock from Begin until Commit or Rollback and works on clones,
// so readers never see half-applied edits.
type MemoryStorage struct {
	mu    sync.Mutex
	items map[string]*session.Session
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		items: make(map[string]*session.Session),
	}
}

func (s *MemoryStorage) Begin(ctx context.Context) (*Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	return &Tx{
		storage: s,
		staged:  make(map[string]*session.Session),
		deleted: make(map[string]bool),
	}, nil
}

// Len returns the number of stored sessions.
func (s *MemoryStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

type Tx struct {
	storage *MemoryStorage
	staged  map[string]*session.Session
	deleted map[string]bool
	seen    []*session.Session
	done    bool
}

func (t *Tx) Add(_ context.Context, sess *session.Session) error {
	if t.done {
		return ErrTxDone
	}
	if _, ok := t.lookup(sess.SessionID); ok {
		return session.ErrSessionExists
	}
	delete(t.deleted, sess.SessionID)
	t.staged[sess.SessionID] = sess
	t.markSeen(sess)
	return nil
}

func (t *Tx) GetByID(_ context.Context, sessionID string) (*session.Session, error) {
	if t.done {
		return nil, ErrTxDone
	}
	sess, ok := t.lookup(sessionID)
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	c := sess.Clone()
	t.markSeen(c)
	return c, nil
}

func (t *Tx) Persist(_ context.Context, sess *session.Session) error {
	if t.done {
		return ErrTxDone
	}
	if _, ok := t.lookup(sess.SessionID); !ok {
		return session.ErrSessionNotFound
	}
	t.staged[sess.SessionID] = sess
	t.markSeen(sess)
	return nil
}

func (t *Tx) Delete(_ context.Context, sess *session.Session) error {
	if t.done {
		return ErrTxDone
	}
	if _, ok := t.lookup(sess.SessionID); !ok {
		return session.ErrSessionNotFound
	}
	delete(t.staged, sess.SessionID)
	t.deleted[sess.SessionID] = true
	t.markSeen(sess)
	return nil
}

func (t *Tx) CollectEvents() []domain.Event {
	var events []domain.Event
	for _, s := range t.seen {
		events = append(events, s.PopEvents()...)
	}
	t.seen = nil
	return events
}

func (t *Tx) Commit() error {
	if t.done {
		return ErrTxDone
	}
	for id := range t.deleted {
		delete(t.storage.items, id)
	}
	for id, sess := range t.staged {
		t.storage.items[id] = sess
	}
	t.finish()
	return nil
}

// Rollback discards staged changes. It is a no-op once the transaction is
// finished.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	for _, s := range t.seen {
		s.PopEvents()
	}
	t.seen = nil
	t.finish()
	return nil
}

func (t *Tx) lookup(sessionID string) (*session.Session, bool) {
	if t.deleted[sessionID] {
		return nil, false
	}
	if sess, ok := t.staged[sessionID]; ok {
		return sess, true
	}
	sess, ok := t.storage.items[sessionID]
	return sess, ok
}

func (t *Tx) markSeen(sess *session.Session) {
	for _, s := range t.seen {
		if s == sess {
			return
		}
	}
	t.seen = append(t.seen, sess)
}

func (t *Tx) finish() {
	t.done = true
	t.staged = nil
	t.deleted = nil
	t.storage.mu.Unlock()
}
