package sessionapp

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	sessionstorage "github.com/burenotti/nutrition_counselling/internal/adapter/storage/sessions"
	"github.com/burenotti/nutrition_counselling/internal/app/card"
	"github.com/burenotti/nutrition_counselling/internal/app/unitofwork"
	"github.com/burenotti/nutrition_counselling/internal/domain"
	"github.com/burenotti/nutrition_counselling/internal/domain/metabolic"
	"github.com/burenotti/nutrition_counselling/internal/domain/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBus struct {
	mu     sync.Mutex
	events []domain.Event
}

func (b *recordingBus) PublishEvents(events ...domain.Event) error {
	b.mu.Lock()
	b.events = append(b.events, events...)
	b.mu.Unlock()
	return nil
}

func (b *recordingBus) payloads(t *testing.T) []string {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, e := range b.events {
		if n, ok := e.(session.Notification); ok {
			p, err := n.Payload()
			require.NoError(t, err)
			out = append(out, p)
		}
	}
	return out
}

type gatedFetcher struct {
	gate chan struct{}
	rec  *metabolic.Record
	err  error
}

func (f *gatedFetcher) FetchMetabolicData(context.Context, string) (*metabolic.Record, error) {
	if f.gate != nil {
		<-f.gate
	}
	return f.rec.Clone(), f.err
}

func f64(v float64) *float64 {
	return &v
}

func fixture() *metabolic.Record {
	return &metabolic.Record{
		BMR:            f64(1650),
		TDEE:           f64(2558),
		TargetCalories: f64(2100),
		ActivityLevel:  metabolic.ModeratelyActive,
		Weight:         f64(78),
		Gender:         metabolic.Male,
	}
}

func setup(fetcher Fetcher) (*Service, *UoW, *recordingBus) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	bus := &recordingBus{}
	uow := unitofwork.New[*AtomicContext](NewAtomicContext(sessionstorage.NewMemoryStorage()), bus, logger)
	return New(fetcher, logger), uow, bus
}

func TestService_OpenShowsLoadingUntilFetchResolves(t *testing.T) {
	fetcher := &gatedFetcher{gate: make(chan struct{}), rec: fixture()}
	svc, uow, _ := setup(fetcher)
	ctx := context.Background()

	sess, err := svc.Open(ctx, uow, "c-1", "Anna", true)
	require.NoError(t, err)

	got, err := svc.Get(ctx, uow, sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, card.StateLoading, svc.Render(got).State)

	close(fetcher.gate)
	svc.Wait()

	got, err = svc.Get(ctx, uow, sess.SessionID)
	require.NoError(t, err)
	c := svc.Render(got)
	assert.Equal(t, card.StateReady, c.State)
	assert.Equal(t, "Anna", c.ClientName)
	assert.True(t, c.Weight.Clickable)
}

func TestService_FetchFailureRendersError(t *testing.T) {
	svc, uow, _ := setup(&gatedFetcher{err: metabolic.ErrFetchFailure})
	ctx := context.Background()

	sess, err := svc.Open(ctx, uow, "c-1", "", true)
	require.NoError(t, err)
	svc.Wait()

	got, err := svc.Get(ctx, uow, sess.SessionID)
	require.NoError(t, err)
	c := svc.Render(got)
	assert.Equal(t, card.StateError, c.State)
	assert.Equal(t, card.TitleError, c.Messages[0].Title)
	assert.Equal(t, "data unavailable", c.Messages[0].Text)
}

func TestService_EditsPublishNotifications(t *testing.T) {
	svc, uow, bus := setup(&gatedFetcher{rec: fixture()})
	ctx := context.Background()

	sess, err := svc.Open(ctx, uow, "c-1", "", true)
	require.NoError(t, err)
	svc.Wait()
	id := sess.SessionID

	_, err = svc.ChangeActivity(ctx, uow, id, metabolic.ExtraActive)
	require.NoError(t, err)
	_, err = svc.ChangeGender(ctx, uow, id, metabolic.Female)
	require.NoError(t, err)

	_, committed, err := svc.EditWeight(ctx, uow, id, session.InputClick, "")
	require.NoError(t, err)
	assert.False(t, committed)
	_, _, err = svc.EditWeight(ctx, uow, id, session.InputType, "abc")
	require.NoError(t, err)
	got, committed, err := svc.EditWeight(ctx, uow, id, session.InputBlur, "")
	require.NoError(t, err)
	assert.False(t, committed)
	assert.Equal(t, "78", got.WeightEditor().Text())

	_, _, _ = svc.EditWeight(ctx, uow, id, session.InputClick, "")
	_, _, _ = svc.EditWeight(ctx, uow, id, session.InputType, "82.7")
	got, committed, err = svc.EditWeight(ctx, uow, id, session.InputEnter, "")
	require.NoError(t, err)
	assert.True(t, committed)
	assert.Equal(t, 83.0, *got.Record.Weight)

	assert.Equal(t, []string{`{"activityLevel":4}`, `{"gender":1}`, `{"weight":83}`}, bus.payloads(t))

	got, err = svc.Get(ctx, uow, id)
	require.NoError(t, err)
	assert.Equal(t, 2558.0, *got.Record.TDEE)
	assert.Equal(t, metabolic.ExtraActive, got.Record.ActivityLevel)
}

func TestService_FailedEditLeavesSessionUntouched(t *testing.T) {
	svc, uow, bus := setup(&gatedFetcher{rec: fixture()})
	ctx := context.Background()

	sess, _ := svc.Open(ctx, uow, "c-1", "", true)
	svc.Wait()

	_, err := svc.ChangeActivity(ctx, uow, sess.SessionID, metabolic.ActivityLevel(9))
	assert.ErrorIs(t, err, metabolic.ErrUnknownActivityLevel)
	assert.ErrorIs(t, err, unitofwork.ErrRollback)
	assert.Empty(t, bus.payloads(t))

	_, err = svc.ChangeActivity(ctx, uow, "missing", metabolic.Sedentary)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestService_ReloadAndClose(t *testing.T) {
	fetcher := &gatedFetcher{rec: fixture()}
	svc, uow, bus := setup(fetcher)
	ctx := context.Background()

	sess, _ := svc.Open(ctx, uow, "c-1", "", true)
	svc.Wait()

	fetcher.rec = fixture()
	fetcher.rec.TargetCalories = f64(1900)
	require.NoError(t, svc.Reload(ctx, uow, sess.SessionID))
	svc.Wait()

	got, err := svc.Get(ctx, uow, sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1900.0, *got.Record.TargetCalories)

	var refreshed bool
	bus.mu.Lock()
	for _, e := range bus.events {
		if r, ok := e.(session.RefreshedEvent); ok {
			refreshed = true
			assert.Equal(t, []string{"targetCalories"}, r.Changed)
		}
	}
	bus.mu.Unlock()
	assert.True(t, refreshed)

	require.NoError(t, svc.Close(ctx, uow, sess.SessionID))
	_, err = svc.Get(ctx, uow, sess.SessionID)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestService_SaveNotesShowsSuccess(t *testing.T) {
	svc, uow, bus := setup(&gatedFetcher{rec: fixture()})
	ctx := context.Background()

	sess, _ := svc.Open(ctx, uow, "c-1", "", true)
	svc.Wait()

	got, err := svc.SaveNotes(ctx, uow, sess.SessionID, session.Notes{Nutrition: "more protein"})
	require.NoError(t, err)
	c := svc.Render(got)
	assert.Equal(t, "more protein", c.Notes.Nutrition)
	assert.Equal(t, card.IntentSuccess, c.Messages[0].Intent)

	payloads := bus.payloads(t)
	require.Len(t, payloads, 1)
	assert.Contains(t, payloads[0], `"nutrition":"more protein"`)
}

func TestService_RenderOnlyDescribesControls(t *testing.T) {
	svc, uow, bus := setup(&gatedFetcher{rec: fixture()})
	ctx := context.Background()

	editable, err := svc.Open(ctx, uow, "c-1", "", true)
	require.NoError(t, err)
	readOnly, err := svc.Open(ctx, uow, "c-2", "", false)
	require.NoError(t, err)
	svc.Wait()

	got, err := svc.Get(ctx, uow, editable.SessionID)
	require.NoError(t, err)
	c := svc.Render(got)
	assert.True(t, c.Weight.Clickable)
	assert.True(t, c.Activity[0].Clickable)
	assert.True(t, c.Gender[0].Clickable)
	assert.Zero(t, got.PendingEvents())

	got, err = svc.Get(ctx, uow, readOnly.SessionID)
	require.NoError(t, err)
	c = svc.Render(got)
	assert.False(t, c.Weight.Clickable)
	assert.False(t, c.Activity[0].Clickable)
	assert.False(t, c.Gender[0].Clickable)

	assert.Empty(t, bus.payloads(t))
}
