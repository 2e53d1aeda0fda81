package sessionapp

import (
	"context"
	"errors"
	"github.com/burenotti/nutrition_counselling/internal/app/card"
	"github.com/burenotti/nutrition_counselling/internal/app/unitofwork"
	"github.com/burenotti/nutrition_counselling/internal/domain/metabolic"
	"github.com/burenotti/nutrition_counselling/internal/domain/session"
	"github.com/google/uuid"
	"log/slog"
	"sync"
	"time"
)

// notesSavedFor is how long the card keeps the "notes saved" message.
const notesSavedFor = 3 * time.Second

type UoW = unitofwork.UnitOfWork[*AtomicContext]

type Fetcher interface {
	FetchMetabolicData(ctx context.Context, counsellingID string) (*metabolic.Record, error)
}

type Service struct {
	logger  *slog.Logger
	fetcher Fetcher
	newID   func() string
	now     func() time.Time
	loads   sync.WaitGroup
}

func New(fetcher Fetcher, logger *slog.Logger) *Service {
	return &Service{
		logger:  logger,
		fetcher: fetcher,
		newID:   uuid.NewString,
		now:     time.Now,
	}
}

// Open creates a session in the loading state and starts its single fetch.
func (s *Service) Open(
	ctx context.Context,
	uow *UoW,
	counsellingID string,
	clientName string,
	editable bool,
) (sess *session.Session, err error) {
	err = uow.Atomic(ctx, func(a *AtomicContext) error {
		sess = session.New(s.newID(), counsellingID, clientName, editable)
		if err := a.SessionStorage.Add(a.Context(), sess); err != nil {
			return err
		}
		return a.Commit()
	})
	if err != nil {
		return nil, err
	}

	s.load(ctx, uow, sess.SessionID, counsellingID)
	return sess, nil
}

// Reload puts the session back into loading and fetches the record again.
// A reload started while another fetch is pending is not guarded: whichever
// fetch finishes last decides the shown record.
func (s *Service) Reload(ctx context.Context, uow *UoW, sessionID string) error {
	var counsellingID string
	err := uow.Atomic(ctx, func(a *AtomicContext) error {
		sess, err := a.SessionStorage.GetByID(a.Context(), sessionID)
		if err != nil {
			return err
		}
		counsellingID = sess.CounsellingID
		sess.BeginLoad()
		if err := a.SessionStorage.Persist(a.Context(), sess); err != nil {
			return err
		}
		return a.Commit()
	})
	if err != nil {
		return err
	}

	s.load(ctx, uow, sessionID, counsellingID)
	return nil
}

func (s *Service) Get(ctx context.Context, uow *UoW, sessionID string) (sess *session.Session, err error) {
	err = uow.Atomic(ctx, func(a *AtomicContext) error {
		var err error
		sess, err = a.SessionStorage.GetByID(a.Context(), sessionID)
		return err
	})
	return
}

func (s *Service) ChangeActivity(
	ctx context.Context,
	uow *UoW,
	sessionID string,
	level metabolic.ActivityLevel,
) (*session.Session, error) {
	return s.modify(ctx, uow, sessionID, func(sess *session.Session) error {
		return sess.ChangeActivity(level)
	})
}

func (s *Service) ChangeGender(
	ctx context.Context,
	uow *UoW,
	sessionID string,
	gender metabolic.Gender,
) (*session.Session, error) {
	return s.modify(ctx, uow, sessionID, func(sess *session.Session) error {
		return sess.ChangeGender(gender)
	})
}

func (s *Service) EditWeight(
	ctx context.Context,
	uow *UoW,
	sessionID string,
	input session.EditInput,
	text string,
) (sess *session.Session, committed bool, err error) {
	sess, err = s.modify(ctx, uow, sessionID, func(sess *session.Session) error {
		var err error
		committed, err = sess.EditWeight(input, text)
		return err
	})
	return
}

func (s *Service) SaveNotes(
	ctx context.Context,
	uow *UoW,
	sessionID string,
	notes session.Notes,
) (*session.Session, error) {
	return s.modify(ctx, uow, sessionID, func(sess *session.Session) error {
		sess.SaveNotes(notes, s.now())
		return nil
	})
}

func (s *Service) Close(ctx context.Context, uow *UoW, sessionID string) error {
	return uow.Atomic(ctx, func(a *AtomicContext) error {
		sess, err := a.SessionStorage.GetByID(a.Context(), sessionID)
		if err != nil {
			return err
		}
		sess.Close()
		if err := a.SessionStorage.Delete(a.Context(), sess); err != nil {
			return err
		}
		return a.Commit()
	})
}

// Render builds the card of a session. Controls are offered only for editable
// sessions; edits come back through ChangeActivity, ChangeGender and EditWeight.
func (s *Service) Render(sess *session.Session) card.Card {
	props := card.Props{
		Record:     sess.Record,
		IsLoading:  sess.Status == session.StatusLoading,
		ClientName: sess.ClientName,
		Weight:     sess.WeightEditor(),
		Notes:      sess.Notes,
		NotesSaved: sess.NotesSavedAt != nil && s.now().Sub(*sess.NotesSavedAt) < notesSavedFor,
	}
	if sess.Status == session.StatusFailed {
		props.Err = errors.New(sess.Failure)
	}
	if sess.Editable {
		props.Controls = card.Controls{
			Activity: true,
			Weight:   sess.WeightEditor().Editable(),
			Gender:   true,
		}
	}
	return card.Render(props)
}

// Wait blocks until every started fetch has been stored.
func (s *Service) Wait() {
	s.loads.Wait()
}

func (s *Service) modify(
	ctx context.Context,
	uow *UoW,
	sessionID string,
	do func(sess *session.Session) error,
) (sess *session.Session, err error) {
	err = uow.Atomic(ctx, func(a *AtomicContext) error {
		var err error
		if sess, err = a.SessionStorage.GetByID(a.Context(), sessionID); err != nil {
			return err
		}
		if err := do(sess); err != nil {
			return err
		}
		if err := a.SessionStorage.Persist(a.Context(), sess); err != nil {
			return err
		}
		return a.Commit()
	})
	return
}

func (s *Service) load(ctx context.Context, uow *UoW, sessionID, counsellingID string) {
	ctx = context.WithoutCancel(ctx)
	s.loads.Add(1)
	go func() {
		defer s.loads.Done()

		rec, fetchErr := s.fetcher.FetchMetabolicData(ctx, counsellingID)

		err := uow.Atomic(ctx, func(a *AtomicContext) error {
			sess, err := a.SessionStorage.GetByID(a.Context(), sessionID)
			if err != nil {
				return err
			}
			if fetchErr != nil {
				sess.Failed(fetchErr)
			} else {
				sess.Loaded(rec)
			}
			if err := a.SessionStorage.Persist(a.Context(), sess); err != nil {
				return err
			}
			return a.Commit()
		})
		if errors.Is(err, session.ErrSessionNotFound) {
			s.logger.Debug("session closed before load finished", "session_id", sessionID)
			return
		}
		if err != nil {
			s.logger.Error("failed to store loaded session", "session_id", sessionID, "error", err)
		}
	}()
}
