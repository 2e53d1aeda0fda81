package sessionapp

import (
	"context"
	sessionstorage "github.com/burenotti/nutrition_counselling/internal/adapter/storage/sessions"
	"github.com/burenotti/nutrition_counselling/internal/domain"
	"github.com/burenotti/nutrition_counselling/internal/domain/session"
)

type SessionStorage interface {
	Add(ctx context.Context, s *session.Session) error
	GetByID(ctx context.Context, sessionID string) (*session.Session, error)
	Persist(ctx context.Context, s *session.Session) error
	Delete(ctx context.Context, s *session.Session) error
	CollectEvents() []domain.Event
}

type AtomicContext struct {
	ctx            context.Context
	tx             *sessionstorage.Tx
	SessionStorage SessionStorage
}

func (a *AtomicContext) Context() context.Context {
	return a.ctx
}

func (a *AtomicContext) Commit() error {
	return a.tx.Commit()
}

func (a *AtomicContext) Rollback() error {
	return a.tx.Rollback()
}

func (a *AtomicContext) CollectEvents() []domain.Event {
	return a.SessionStorage.CollectEvents()
}

// NewAtomicContext returns a constructor of atomic contexts bound to one
// session storage.
func NewAtomicContext(st *sessionstorage.MemoryStorage) func(context.Context) (*AtomicContext, error) {
	return func(ctx context.Context) (*AtomicContext, error) {
		tx, err := st.Begin(ctx)
		if err != nil {
			return nil, err
		}
		return &AtomicContext{
			ctx:            ctx,
			tx:             tx,
			SessionStorage: tx,
		}, nil
	}
}
