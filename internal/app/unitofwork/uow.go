package unitofwork

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/nutrition_counselling/internal/domain"
	"log/slog"
)

var (
	ErrRollback = errors.New("rollback")
)

// AtomicContext is the transactional view handed to a unit of work body.
// Rollback after a successful Commit must be a no-op.
type AtomicContext interface {
	Context() context.Context
	Commit() error
	Rollback() error
	CollectEvents() []domain.Event
}

type MessageBus interface {
	PublishEvents(events ...domain.Event) error
}

type UnitOfWork[T AtomicContext] struct {
	newContext func(context.Context) (T, error)
	msgBus     MessageBus
	logger     *slog.Logger
}

func New[T AtomicContext](
	newCtx func(context.Context) (T, error),
	msgBus MessageBus,
	logger *slog.Logger,
) *UnitOfWork[T] {
	return &UnitOfWork[T]{
		newContext: newCtx,
		msgBus:     msgBus,
		logger:     logger,
	}
}

// Atomic runs do inside a fresh atomic context. Events collected from the
// context are published only when do succeeds.
func (uow *UnitOfWork[T]) Atomic(
	ctx context.Context,
	do func(T) error,
) (err error) {
	txCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	atomicCtx, err := uow.newContext(txCtx)
	if err != nil {
		return stateRollbackError(err)
	}

	defer func() {
		if r := recover(); r != nil {
			if err := atomicCtx.Rollback(); err != nil {
				uow.logger.Error("failed to rollback", "error", err)
			}
			panic(r)
		}
	}()

	if err := do(atomicCtx); err != nil {
		if err := atomicCtx.Rollback(); err != nil {
			uow.logger.Error("failed to rollback", "error", err)
		}
		return stateRollbackError(err)
	}

	// Bodies that only read never commit explicitly.
	if err := atomicCtx.Rollback(); err != nil {
		uow.logger.Error("failed to release atomic context", "error", err)
	}

	if err := uow.msgBus.PublishEvents(atomicCtx.CollectEvents()...); err != nil {
		uow.logger.Error("failed to publish events", "error", err)
		return err
	}

	return nil
}

func stateRollbackError(err error) error {
	return errors.Join(fmt.Errorf("state rollback: %w", err), ErrRollback)
}
