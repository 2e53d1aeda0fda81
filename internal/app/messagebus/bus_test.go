package messagebus

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/burenotti/nutrition_counselling/internal/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testEvent struct {
	kind string
	n    int
}

func (e testEvent) Type() string {
	return e.kind
}

func (e testEvent) PublishedAt() time.Time {
	return time.Time{}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMessageBus_DeliversInOrder(t *testing.T) {
	bus := New(discardLogger(), 4)

	var got []int
	var all []string
	bus.Register("a", func(e domain.Event) error {
		got = append(got, e.(testEvent).n)
		return nil
	})
	bus.Register(AnyEvent, func(e domain.Event) error {
		all = append(all, e.Type())
		return nil
	})

	for i := 0; i < 10; i++ {
		assert.NoError(t, bus.PublishEvents(testEvent{kind: "a", n: i}))
	}
	assert.NoError(t, bus.PublishEvents(testEvent{kind: "b"}))
	bus.Close()

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
	assert.Len(t, all, 11)
	assert.Equal(t, "b", all[10])
}

func TestMessageBus_HandlerErrorDoesNotStopDelivery(t *testing.T) {
	bus := New(discardLogger(), 1)
	calls := 0
	bus.Register("a", func(domain.Event) error {
		calls++
		return errors.New("boom")
	})
	_ = bus.PublishEvents(testEvent{kind: "a"}, testEvent{kind: "a"})
	bus.Close()
	assert.Equal(t, 2, calls)
}

func TestMessageBus_PublishAfterClose(t *testing.T) {
	bus := New(discardLogger(), 1)
	bus.Close()
	bus.Close()
	assert.ErrorIs(t, bus.PublishEvents(testEvent{kind: "a"}), ErrClosed)
}
