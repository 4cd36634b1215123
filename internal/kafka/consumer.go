package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Handler returns nil once the message is fully processed and its offset may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

type Consumer struct {
	r       *kafka.Reader
	workers int
	log     *slog.Logger

	// Attempts per message before it is logged and skipped.
	Attempts int
	Backoff  time.Duration
}

// NewConsumer joins group on every topic listed.
func NewConsumer(brokers []string, group string, topics []string, workers int, log *slog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{
		r:        r,
		workers:  workers,
		log:      log.With("topics", topics, "group", group),
		Attempts: 3,
		Backoff:  500 * time.Millisecond,
	}
}

// Start blocks until ctx is cancelled or fetching fails. Messages are spread
// over the worker pool; each one is committed after it succeeds or runs out of
// attempts, so a poison message cannot stall its partition.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make(chan kafka.Message, 1024)
	var wg sync.WaitGroup

	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for m := range jobs {
				if err := c.handle(ctx, h, m); err != nil {
					if ctx.Err() != nil {
						continue // shutdown; dikirim ulang setelah restart
					}
					c.log.Error("giving up on message", "worker", id, "topic", m.Topic, "offset", m.Offset, "err", err)
				}
				if err := c.r.CommitMessages(ctx, m); err != nil {
					c.log.Error("commit failed", "worker", id, "topic", m.Topic, "offset", m.Offset, "err", err)
				}
			}
		}(i)
	}
	defer wg.Wait()
	defer close(jobs)

	// dispatcher loop
	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			// kecilkan noise saat shutdown
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case jobs <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Consumer) handle(ctx context.Context, h Handler, m kafka.Message) error {
	attempts := max(c.Attempts, 1)
	var err error
	for i := 1; i <= attempts; i++ {
		if err = h(ctx, m); err == nil {
			return nil
		}
		if i == attempts {
			break
		}
		c.log.Warn("handler failed, retrying", "topic", m.Topic, "offset", m.Offset, "attempt", i, "err", err)
		select {
		case <-time.After(c.Backoff * time.Duration(i)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
