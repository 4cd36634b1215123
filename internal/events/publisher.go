package events

import (
	"context"
	"sync"
	"time"

	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Emitter is what services depend on; publishing is fire-and-forget.
type Emitter interface {
	Emit(ctx context.Context, topic, eventType, key string, payload any)
}

type producer interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header) bool
}

// Publisher wraps payloads in the v1 envelope and hands them to the Kafka producer.
type Publisher struct {
	Producer producer
	Service  string
}

func (p *Publisher) Emit(ctx context.Context, topic, eventType, key string, payload any) {
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.Service,
		TraceID:       middleware.GetReqID(ctx),
		CorrelationID: key,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Producer.Publish(topic, []byte(key), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// Nop is used when no brokers are configured.
type Nop struct{}

func (Nop) Emit(context.Context, string, string, string, any) {}

type Recorded struct {
	Topic     string
	EventType string
	Key       string
	Payload   any
}

// Recorder keeps emitted events in memory; handy in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Recorded
}

func (r *Recorder) Emit(_ context.Context, topic, eventType, key string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Recorded{Topic: topic, EventType: eventType, Key: key, Payload: payload})
}

func (r *Recorder) Events() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Recorded(nil), r.events...)
}

// Types returns the emitted event types in order.
func (r *Recorder) Types() []string {
	evs := r.Events()
	out := make([]string, 0, len(evs))
	for _, e := range evs {
		out = append(out, e.EventType)
	}
	return out
}
