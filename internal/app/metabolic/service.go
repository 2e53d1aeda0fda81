package metabolicservice

import (
	"context"
	"errors"
	"github.com/burenotti/nutrition_counselling/internal/domain/metabolic"
	"log/slog"
	"strings"
	"time"
)

const (
	OutcomeOK         = "ok"
	OutcomeIncomplete = "incomplete"
	OutcomeEmpty      = "empty"
	OutcomeFailure    = "failure"
)

type LoadObserver interface {
	ObserveLoad(outcome string, elapsed time.Duration)
}

type Service struct {
	store    metabolic.RecordStore
	spec     metabolic.FieldSpec
	logger   *slog.Logger
	observer LoadObserver
}

func New(store metabolic.RecordStore, logger *slog.Logger, observer LoadObserver) *Service {
	return &Service{
		store:    store,
		spec:     metabolic.DefaultFieldSpec(),
		logger:   logger,
		observer: observer,
	}
}

// FetchMetabolicData reads a counselling record with its member and derives
// the missing TDEE. Every store or shape failure is reported as
// metabolic.ErrFetchFailure; the request is never retried.
func (s *Service) FetchMetabolicData(ctx context.Context, counsellingID string) (*metabolic.Record, error) {
	started := time.Now()
	logger := s.logger.With("counselling_id", counsellingID)

	if strings.TrimSpace(counsellingID) == "" {
		s.observe(OutcomeEmpty, started)
		return nil, metabolic.ErrNoData
	}

	raw, err := s.store.Retrieve(ctx, counsellingID, s.spec)
	if err != nil {
		logger.Error("failed to fetch metabolic data", "error", err)
		s.observe(OutcomeFailure, started)
		return nil, metabolic.ErrFetchFailure
	}

	rec, err := metabolic.DeriveAndValidate(raw)
	if err != nil {
		if errors.Is(err, metabolic.ErrNoData) {
			s.observe(OutcomeEmpty, started)
			return nil, err
		}
		logger.Error("unexpected metabolic record shape", "error", err)
		s.observe(OutcomeFailure, started)
		return nil, metabolic.ErrFetchFailure
	}

	if err := rec.Validate(); err != nil {
		logger.Warn("metabolic data incomplete", "error", err)
		s.observe(OutcomeIncomplete, started)
		return rec, nil
	}

	s.observe(OutcomeOK, started)
	return rec, nil
}

func (s *Service) IsDataComplete(rec *metabolic.Record) bool {
	return rec != nil && rec.IsComplete()
}

func (s *Service) observe(outcome string, started time.Time) {
	if s.observer != nil {
		s.observer.ObserveLoad(outcome, time.Since(started))
	}
}
