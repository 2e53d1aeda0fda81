package domain

import (
	"github.com/stretchr/testify/assert"
	"sync"
	"testing"
	"time"
)

type pushed struct{ n int }

func (pushed) Type() string           { return "pushed" }
func (pushed) PublishedAt() time.Time { return time.Time{} }

func TestAggregate_PopEventsDrains(t *testing.T) {
	var a Aggregate
	a.PushEvent(pushed{1})
	a.PushEvent(pushed{2})
	assert.Equal(t, 2, a.PendingEvents())

	assert.Equal(t, []Event{pushed{1}, pushed{2}}, a.PopEvents())
	assert.Zero(t, a.PendingEvents())
	assert.Empty(t, a.PopEvents())
}

func TestAggregate_ConcurrentPush(t *testing.T) {
	var (
		a  Aggregate
		wg sync.WaitGroup
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a.PushEvent(pushed{i})
		}(i)
	}
	wg.Wait()
	assert.Len(t, a.PopEvents(), 50)
}
