package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrOutboxFull = errors.New("event outbox is full")

const (
	defaultOutboxSize = 1024
	defaultFlushTick  = time.Second
	flushTimeout      = 5 * time.Second
)

// Outbox decouples checkout from the broker: Publish only queues, and Run
// forwards queued events on every tick. Events that fail to go out stay
// queued for the next tick.
type Outbox struct {
	next Publisher
	tick time.Duration
	size int
	log  *zap.Logger

	mu      sync.Mutex
	pending []CheckoutCompleted
}

func NewOutbox(next Publisher, tick time.Duration, log *zap.Logger) *Outbox {
	if tick <= 0 {
		tick = defaultFlushTick
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Outbox{next: next, tick: tick, size: defaultOutboxSize, log: log}
}

func (o *Outbox) Publish(_ context.Context, ev CheckoutCompleted) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.pending) >= o.size {
		return ErrOutboxFull
	}
	o.pending = append(o.pending, ev)
	return nil
}

func (o *Outbox) Pending() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.pending)
}

// Run flushes until ctx is done, then makes one last attempt.
func (o *Outbox) Run(ctx context.Context) {
	ticker := time.NewTicker(o.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			o.Flush(ctx)
		case <-ctx.Done():
			final, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
			o.Flush(final)
			cancel()
			if n := o.Pending(); n > 0 {
				o.log.Warn("outbox closed with unpublished events", zap.Int("count", n))
			}
			return
		}
	}
}

// Flush publishes everything queued so far, in order.
func (o *Outbox) Flush(ctx context.Context) {
	o.mu.Lock()
	batch := o.pending
	o.pending = nil
	o.mu.Unlock()

	var failed []CheckoutCompleted
	for i, ev := range batch {
		if err := o.next.Publish(ctx, ev); err != nil {
			o.log.Error("failed to publish event",
				zap.String("event_id", ev.ID),
				zap.String("invoice", ev.InvoiceNumber),
				zap.Error(err))
			failed = batch[i:]
			break
		}
	}

	if len(failed) > 0 {
		o.requeue(failed)
	}
}

// requeue puts failed events back ahead of anything queued meanwhile. The
// queue stays within size; the oldest events are dropped first.
func (o *Outbox) requeue(failed []CheckoutCompleted) {
	o.mu.Lock()
	merged := append(failed, o.pending...)
	var dropped []CheckoutCompleted
	if over := len(merged) - o.size; over > 0 {
		dropped, merged = merged[:over], merged[over:]
	}
	o.pending = merged
	o.mu.Unlock()

	for _, ev := range dropped {
		o.log.Warn("dropping unpublished event, outbox full",
			zap.String("event_id", ev.ID),
			zap.String("invoice", ev.InvoiceNumber))
	}
	if len(dropped) > 0 {
		o.log.Error("outbox overflow", zap.Int("dropped", len(dropped)), zap.Int("size", o.size))
	}
}
