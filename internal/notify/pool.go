package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrQueueFull is returned by Submit when the background queue is at
// capacity. Callers on the order path log it and move on; the order stays
// confirmed either way.
var ErrQueueFull = errors.New("notify: dispatch queue full, event dropped")

// AsyncDispatcher runs fire-and-forget dispatches on a fixed pool of workers
// behind a bounded queue. The bound is the backstop against a degraded mail
// function: once the queue is full, further events are dropped with a warning
// instead of growing memory or blocking order creation.
type AsyncDispatcher struct {
	dispatcher Dispatcher
	queue      chan Event
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

// NewAsyncDispatcher starts workers goroutines draining a queue of queueSize
// events into d. Close must be called to stop them.
func NewAsyncDispatcher(d Dispatcher, workers, queueSize int) *AsyncDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	a := &AsyncDispatcher{
		dispatcher: d,
		queue:      make(chan Event, queueSize),
	}
	a.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go a.worker()
	}
	return a
}

// Submit enqueues ev for background dispatch. It never blocks: if the queue
// is full the event is dropped and ErrQueueFull returned.
func (a *AsyncDispatcher) Submit(ctx context.Context, ev Event) error {
	select {
	case a.queue <- ev:
		return nil
	default:
		slog.WarnContext(ctx, "notification queue full, dropping event",
			"order_id", ev.OrderID, "queue_size", cap(a.queue))
		return ErrQueueFull
	}
}

func (a *AsyncDispatcher) worker() {
	defer a.wg.Done()
	for ev := range a.queue {
		// Workers outlive the request that enqueued the event, so dispatch
		// under a fresh context rather than the caller's.
		if err := a.dispatcher.Dispatch(context.Background(), ev, FireAndForget); err != nil {
			slog.Error("notification dispatch failed",
				"order_id", ev.OrderID, "error", err)
		}
	}
}

// Close stops accepting events, waits for in-flight dispatches to finish.
func (a *AsyncDispatcher) Close() {
	a.closeOnce.Do(func() {
		close(a.queue)
	})
	a.wg.Wait()
}
