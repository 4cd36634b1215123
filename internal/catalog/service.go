package catalog

import (
	"context"
	"log/slog"
	"strings"
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
		log:    log.With("component", "catalog"),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

func (s *Service) List(ctx context.Context) ([]Product, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	return s.store.Get(ctx, id)
}

// Create validates the submission, stores every image, then persists the product.
// Nothing is written when validation fails.
func (s *Service) Create(ctx context.Context, in CreateInput) (Product, error) {
	np, err := ValidateCreate(in)
	if err != nil {
		return Product{}, err
	}
	if !np.KnownCategory {
		s.log.WarnContext(ctx, "unrecognized category, filing under uncategorized", "category", np.RawCategory, "name", np.Name)
	}

	names := make([]string, 0, len(np.Images))
	urls := make([]string, 0, len(np.Images))
	for _, up := range np.Images {
		name, err := s.media.Save(ctx, up)
		if err != nil {
			s.orphaned(ctx, names, "product image upload failed")
			return Product{}, err
		}
		names = append(names, name)
		urls = append(urls, media.URL(in.BaseURL, name))
	}

	now := s.now()
	p := Product{
		ID:          s.newID(),
		Name:        np.Name,
		Price:       np.Price,
		Category:    np.Category,
		Description: np.Description,
		Images:      urls,
		Stock:       np.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.Create(ctx, p); err != nil {
		s.orphaned(ctx, names, "product insert failed")
		return Product{}, err
	}

	s.events.Emit(ctx, events.TopicCatalog, events.EventProductCreated, p.ID, productPayload(p))
	s.log.InfoContext(ctx, "product created", "product_id", p.ID, "name", p.Name, "images", len(p.Images))
	return p, nil
}

// Update merges the supplied fields into the stored record. Stock keeps its
// previous value unless the update carries one.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Product, error) {
	if err := ValidateUpdate(in); err != nil {
		return Product{}, err
	}
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}

	next := cur
	if in.Name != nil {
		next.Name = strings.TrimSpace(*in.Name)
	}
	if in.Price != nil {
		next.Price = *in.Price
	}
	if in.Description != nil {
		next.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		c, known := ParseCategory(*in.Category)
		if !known {
			s.log.WarnContext(ctx, "unrecognized category, filing under uncategorized", "category", *in.Category, "product_id", id)
		}
		next.Category = c
	}
	if in.Stock != nil {
		next.Stock = *in.Stock
	}
	next.UpdatedAt = s.now()

	if err := s.store.Update(ctx, next); err != nil {
		return Product{}, err
	}

	s.events.Emit(ctx, events.TopicCatalog, events.EventProductUpdated, id, productPayload(next))
	if cur.Stock != next.Stock {
		s.events.Emit(ctx, events.TopicCatalog, events.EventProductStockChanged, id, events.StockChangedPayload{
			ProductID: id, OldStock: cur.Stock, NewStock: next.Stock,
		})
	}
	return next, nil
}

// Delete removes the record first; image cleanup afterwards is best effort.
func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	for _, u := range p.Images {
		name, ok := media.NameFromURL(u)
		if !ok {
			s.log.WarnContext(ctx, "image url outside media store, skipping", "product_id", id, "url", u)
			continue
		}
		if err := s.media.Delete(ctx, name); err != nil {
			s.log.WarnContext(ctx, "product image cleanup failed", "product_id", id, "name", name, "err", err)
		}
	}

	s.events.Emit(ctx, events.TopicCatalog, events.EventProductDeleted, id, events.ProductDeletedPayload{ProductID: id, Images: p.Images})
	s.log.InfoContext(ctx, "product deleted", "product_id", id)
	return nil
}

func (s *Service) orphaned(ctx context.Context, names []string, reason string) {
	if len(names) == 0 {
		return
	}
	s.log.WarnContext(ctx, "uploaded media left without a record", "names", names, "reason", reason)
	s.events.Emit(ctx, events.TopicMedia, events.EventMediaOrphaned, names[0], events.MediaOrphanedPayload{Names: names, Reason: reason})
}

func productPayload(p Product) events.ProductPayload {
	return events.ProductPayload{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Category:  string(p.Category),
		Stock:     p.Stock,
	}
}
