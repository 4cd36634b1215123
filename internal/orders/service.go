package orders

import (
	"context"
	"log/slog"
	"time"

	"github.com/ariefcatur/go-storefront/internal/events"
	"github.com/ariefcatur/go-storefront/internal/media"
	"github.com/google/uuid"
)

type Service struct {
	store  Store
	media  media.Store
	events events.Emitter
	log    *slog.Logger

	now   func() time.Time
	newID func() string
}

func NewService(store Store, m media.Store, ev events.Emitter, log *slog.Logger) *Service {
	return &Service{
		store:  store,
		media:  m,
		events: ev,
		log:    log.With("component", "orders"),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	return s.store.Get(ctx, id)
}

// Create stores the payment proof and persists the order. The submitted total
// is kept as-is; a mismatch with the items is only logged. Stock is untouched.
func (s *Service) Create(ctx context.Context, in CreateInput) (Order, error) {
	no, err := ValidateCreate(in)
	if err != nil {
		return Order{}, err
	}
	if sum := SumItems(no.Items); !sum.Equal(no.Total) {
		s.log.WarnContext(ctx, "order total does not match items",
			"submitted", no.Total.StringFixed(2), "computed", sum.StringFixed(2), "fullname", no.Fullname)
	}

	name, err := s.media.Save(ctx, no.Proof)
	if err != nil {
		return Order{}, err
	}

	o := Order{
		ID:           s.newID(),
		Fullname:     no.Fullname,
		GCash:        no.GCash,
		Address:      no.Address,
		Items:        no.Items,
		Total:        no.Total,
		PaymentProof: media.URL(in.BaseURL, name),
		CreatedAt:    s.now(),
	}
	if err := s.store.Create(ctx, o); err != nil {
		s.log.WarnContext(ctx, "payment proof left without an order", "name", name, "err", err)
		s.events.Emit(ctx, events.TopicMedia, events.EventMediaOrphaned, name, events.MediaOrphanedPayload{
			Names: []string{name}, Reason: "order insert failed",
		})
		return Order{}, err
	}

	s.events.Emit(ctx, events.TopicOrders, events.EventOrderPlaced, o.ID, events.OrderPlacedPayload{
		OrderID: o.ID, Total: o.Total, ItemCount: len(o.Items),
	})
	s.log.InfoContext(ctx, "order placed", "order_id", o.ID, "items", len(o.Items), "total", o.Total.StringFixed(2))
	return o, nil
}

// Delete removes the order record only; the payment proof file stays.
func (s *Service) Delete(ctx context.Context, id string) error {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Emit(ctx, events.TopicOrders, events.EventOrderDeleted, id, events.OrderDeletedPayload{
		OrderID: id, PaymentProof: o.PaymentProof,
	})
	s.log.InfoContext(ctx, "order deleted", "order_id", id)
	return nil
}
