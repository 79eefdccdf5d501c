package events

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPublishInvokesSubscribersForType(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []string
	d.Subscribe(EventBugCreated, func(_ context.Context, e Event) error {
		got = append(got, "a:"+e.BugID)
		return nil
	})
	d.Subscribe(EventBugCreated, func(_ context.Context, e Event) error {
		got = append(got, "b:"+e.BugID)
		return nil
	})
	d.Subscribe(EventBugDeleted, func(_ context.Context, e Event) error {
		got = append(got, "deleted")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventBugCreated, BugID: "1"}))
	assert.Equal(t, []string{"a:1", "b:1"}, got)
}

func TestPublishContinuesAfterHandlerError(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")
	called := false
	d.Subscribe(EventBugUpdated, func(context.Context, Event) error { return boom })
	d.Subscribe(EventBugUpdated, func(context.Context, Event) error {
		called = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventBugUpdated})
	assert.ErrorIs(t, err, boom)
	assert.True(t, called)
}

func TestConcurrentSubscribeAndPublish(t *testing.T) {
	d := NewInMemoryDispatcher()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			d.Subscribe(EventBugCreated, func(context.Context, Event) error { return nil })
		}()
		go func() {
			defer wg.Done()
			_ = d.Publish(context.Background(), Event{Type: EventBugCreated})
		}()
	}
	wg.Wait()
}

func TestPublishRecoversPanickingHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	called := false
	d.Subscribe(EventBugDeleted, func(context.Context, Event) error { panic("nil map") })
	d.Subscribe(EventBugDeleted, func(context.Context, Event) error {
		called = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventBugDeleted})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bug_deleted handler 0: handler panic: nil map")
	assert.True(t, called)
}
