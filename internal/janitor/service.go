// Package janitor removes stored media nothing points to any more. It runs off
// the request path as a Kafka consumer on the media and orders topics.
package janitor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/events"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/media"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// Topics the janitor subscribes to.
var Topics = []string{events.TopicMedia, events.TopicOrders}

type Service struct {
	Media media.Store
	Redis redis.Cmdable // nil = tanpa dedup; delete sudah idempotent
	Log   *slog.Logger

	// PurgeProofs also deletes an order's payment proof once the order is gone.
	PurgeProofs bool
}

// HandleMessage is installed as the consumer handler. A nil return commits the offset.
func (s *Service) HandleMessage(ctx context.Context, m kafkago.Message) error {
	// 1) decode envelope
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// pesan rusak tidak akan pernah sukses, commit saja
		s.Log.WarnContext(ctx, "undecodable message, skipping", "topic", m.Topic, "offset", m.Offset, "err", err)
		return nil
	}

	var names []string
	switch env.EventType {
	case events.EventMediaOrphaned:
		p, err := kafkax.UnwrapPayload[events.MediaOrphanedPayload](env.Payload)
		if err != nil {
			return err
		}
		names = p.Names
	case events.EventOrderDeleted:
		if !s.PurgeProofs {
			return nil
		}
		p, err := kafkax.UnwrapPayload[events.OrderDeletedPayload](env.Payload)
		if err != nil {
			return err
		}
		name, ok := media.NameFromURL(p.PaymentProof)
		if !ok {
			s.Log.WarnContext(ctx, "payment proof outside media store, skipping", "order_id", p.OrderID, "url", p.PaymentProof)
			return nil
		}
		names = []string{name}
	default:
		return nil // ignore
	}

	// 2) dedup via Redis (pakai event_id)
	dkey := fmt.Sprintf(redisx.KeyDedup, "janitor", env.EventID)
	if s.Redis != nil {
		first, err := redisx.Claim(ctx, s.Redis, dkey, redisx.TTLDedup)
		if err != nil {
			s.Log.WarnContext(ctx, "dedup unavailable, processing anyway", "event_id", env.EventID, "err", err)
		} else if !first {
			return nil
		}
	}

	// 3) hapus file
	if err := s.purge(ctx, names); err != nil {
		if s.Redis != nil {
			// lepas claim supaya redelivery diproses lagi
			_ = s.Redis.Del(ctx, dkey).Err()
		}
		return err
	}
	s.Log.InfoContext(ctx, "media purged", "event_type", env.EventType, "event_id", env.EventID, "names", names)
	return nil
}

func (s *Service) purge(ctx context.Context, names []string) error {
	var errs []error
	for _, name := range names {
		err := s.Media.Delete(ctx, name)
		switch {
		case err == nil, errors.Is(err, apperr.ErrNotFound):
		case errors.Is(err, apperr.ErrValidation):
			s.Log.WarnContext(ctx, "refusing to delete invalid media name", "name", name)
		default:
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
