package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type recordingDispatcher struct {
	mu      sync.Mutex
	events  []Event
	block   chan struct{}
	fail    error
	started chan struct{}
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, ev Event, mode Mode) error {
	if d.started != nil {
		d.started <- struct{}{}
	}
	if d.block != nil {
		<-d.block
	}
	if d.fail != nil {
		return d.fail
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, ev)
	return nil
}

func (d *recordingDispatcher) dispatched() []Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Event(nil), d.events...)
}

func TestAsyncDispatcherDeliversEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &recordingDispatcher{}
	a := NewAsyncDispatcher(rec, 2, 10)

	for i := 0; i < 5; i++ {
		require.NoError(t, a.Submit(context.Background(), Event{OrderID: "o1"}))
	}
	a.Close()

	assert.Len(t, rec.dispatched(), 5)
}

func TestAsyncDispatcherRejectsWhenFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	// One worker, blocked mid-dispatch, queue of one: the first submit is
	// picked up, the second fills the queue, the third must be dropped.
	rec := &recordingDispatcher{
		block:   make(chan struct{}),
		started: make(chan struct{}, 4),
	}
	a := NewAsyncDispatcher(rec, 1, 1)

	require.NoError(t, a.Submit(context.Background(), Event{OrderID: "o1"}))
	<-rec.started // worker holds o1

	require.NoError(t, a.Submit(context.Background(), Event{OrderID: "o2"}))

	err := a.Submit(context.Background(), Event{OrderID: "o3"})
	require.ErrorIs(t, err, ErrQueueFull)

	close(rec.block)
	a.Close()

	got := rec.dispatched()
	assert.Len(t, got, 2, "dropped event must not be dispatched")
}

func TestAsyncDispatcherSubmitNeverBlocks(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &recordingDispatcher{
		block:   make(chan struct{}),
		started: make(chan struct{}, 4),
	}
	a := NewAsyncDispatcher(rec, 1, 1)

	require.NoError(t, a.Submit(context.Background(), Event{OrderID: "o1"}))
	<-rec.started
	require.NoError(t, a.Submit(context.Background(), Event{OrderID: "o2"}))

	done := make(chan error, 1)
	go func() { done <- a.Submit(context.Background(), Event{OrderID: "o3"}) }()

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrQueueFull)
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue")
	}

	close(rec.block)
	a.Close()
}

func TestAsyncDispatcherSwallowsDispatchErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	rec := &recordingDispatcher{fail: errors.New("mail function down")}
	a := NewAsyncDispatcher(rec, 1, 10)

	// A failing dispatcher must not panic the worker or block Close.
	require.NoError(t, a.Submit(context.Background(), Event{OrderID: "o1"}))
	a.Close()
}

func TestAsyncDispatcherCloseIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	a := NewAsyncDispatcher(&recordingDispatcher{}, 1, 1)
	a.Close()
	a.Close()
}
