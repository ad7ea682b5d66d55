package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fjod/forgeline/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

type flakyPublisher struct {
	mu       sync.Mutex
	failures int
	got      []string
}

func (p *flakyPublisher) Publish(_ context.Context, ev CheckoutCompleted) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return errors.New("broker down")
	}
	p.got = append(p.got, ev.InvoiceNumber)
	return nil
}

func (p *flakyPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.got...)
}

// stalledPublisher fails every event, holding the first attempt until gate
// is closed.
type stalledPublisher struct {
	gate    chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (p *stalledPublisher) Publish(context.Context, CheckoutCompleted) error {
	p.once.Do(func() {
		close(p.entered)
		<-p.gate
	})
	return errors.New("broker down")
}

func sampleRecord(number string) domain.InvoiceRecord {
	cart := domain.NewCart([]domain.CartLine{
		{ProductID: 1, Name: "Martillo Profesional", UnitPrice: decimal.NewFromInt(1500), Quantity: 2},
	})
	return domain.NewInvoiceRecord(number, time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), cart, nil, domain.PayOnDelivery)
}

func TestNewCheckoutCompleted(t *testing.T) {
	ev := NewCheckoutCompleted("sess-1", sampleRecord("FACT-1-1"))

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "sess-1", ev.SessionID)
	assert.Equal(t, "FACT-1-1", ev.InvoiceNumber)
	assert.Equal(t, domain.PayOnDelivery, ev.Method)
	assert.Equal(t, "3450", ev.Total.String())
	require.Len(t, ev.Items, 1)
	assert.Equal(t, 2, ev.Items[0].Quantity)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}
	ev := NewCheckoutCompleted("sess-1", sampleRecord("FACT-1-1"))

	require.NoError(t, p.Publish(context.Background(), ev))

	require.Len(t, w.msgs, 1)
	msg := w.msgs[0]
	assert.Equal(t, "sess-1", string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, TypeCheckoutCompleted, string(msg.Headers[0].Value))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "FACT-1-1", decoded["invoice_number"])
	assert.Equal(t, "on-delivery", decoded["method"])
	assert.Equal(t, "3450", decoded["total"])
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := &KafkaPublisher{writer: &fakeWriter{err: errors.New("no leader")}}

	err := p.Publish(context.Background(), NewCheckoutCompleted("s", sampleRecord("n")))

	assert.ErrorContains(t, err, "write to kafka: no leader")
}

func TestKafkaPublisher_Close(t *testing.T) {
	w := &fakeWriter{}
	p := &KafkaPublisher{writer: w}

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestNewKafkaPublisher_Topic(t *testing.T) {
	p := NewKafkaPublisher("localhost:9092")
	defer p.Close()

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, TopicCheckoutCompleted, w.Topic)
}

func TestOutbox_FlushKeepsOrderAndRetries(t *testing.T) {
	next := &flakyPublisher{failures: 1}
	o := NewOutbox(next, time.Hour, nil)
	ctx := context.Background()

	for _, n := range []string{"A", "B", "C"} {
		require.NoError(t, o.Publish(ctx, NewCheckoutCompleted("s", sampleRecord(n))))
	}

	o.Flush(ctx)
	assert.Empty(t, next.published())
	assert.Equal(t, 3, o.Pending())

	o.Flush(ctx)
	assert.Equal(t, []string{"A", "B", "C"}, next.published())
	assert.Zero(t, o.Pending())
}

func TestOutbox_Full(t *testing.T) {
	o := NewOutbox(Nop{}, time.Hour, nil)
	o.size = 1
	ctx := context.Background()

	require.NoError(t, o.Publish(ctx, CheckoutCompleted{}))
	assert.ErrorIs(t, o.Publish(ctx, CheckoutCompleted{}), ErrOutboxFull)
}

func TestOutbox_RunFlushesOnTickAndShutdown(t *testing.T) {
	next := &flakyPublisher{}
	o := NewOutbox(next, 10*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		o.Run(ctx)
		close(done)
	}()

	require.NoError(t, o.Publish(ctx, NewCheckoutCompleted("s", sampleRecord("A"))))
	assert.Eventually(t, func() bool { return len(next.published()) == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, o.Publish(ctx, NewCheckoutCompleted("s", sampleRecord("B"))))
	cancel()
	<-done

	assert.Equal(t, []string{"A", "B"}, next.published())
}

func TestOutbox_RequeueStaysWithinSize(t *testing.T) {
	next := &stalledPublisher{gate: make(chan struct{}), entered: make(chan struct{})}
	core, logs := observer.New(zap.WarnLevel)
	o := NewOutbox(next, time.Hour, zap.New(core))
	o.size = 2
	ctx := context.Background()

	require.NoError(t, o.Publish(ctx, NewCheckoutCompleted("s", sampleRecord("A"))))
	require.NoError(t, o.Publish(ctx, NewCheckoutCompleted("s", sampleRecord("B"))))

	done := make(chan struct{})
	go func() {
		o.Flush(ctx)
		close(done)
	}()
	<-next.entered

	// queued while the broker is stalled
	require.NoError(t, o.Publish(ctx, NewCheckoutCompleted("s", sampleRecord("C"))))
	require.NoError(t, o.Publish(ctx, NewCheckoutCompleted("s", sampleRecord("D"))))

	close(next.gate)
	<-done

	assert.Equal(t, 2, o.Pending())
	o.mu.Lock()
	kept := []string{o.pending[0].InvoiceNumber, o.pending[1].InvoiceNumber}
	o.mu.Unlock()
	assert.Equal(t, []string{"C", "D"}, kept)

	dropped := logs.FilterMessage("dropping unpublished event, outbox full").All()
	require.Len(t, dropped, 2)
	assert.Equal(t, "A", dropped[0].ContextMap()["invoice"])
	assert.Equal(t, "B", dropped[1].ContextMap()["invoice"])
	overflow := logs.FilterMessage("outbox overflow").All()
	require.Len(t, overflow, 1)
	assert.Equal(t, int64(2), overflow[0].ContextMap()["dropped"])
}
