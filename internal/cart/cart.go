// Package cart is the shopper's client-side cart. It lives entirely in a
// Storage under one key until checkout hands a snapshot to the order API.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/media"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/shopspring/decimal"
)

// Key is the storage key holding the JSON array of items.
const Key = "cart"

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Details is what the checkout form collects besides the items.
type Details struct {
	Fullname string        `form:"fullname" validate:"required"`
	GCash    string        `form:"gcash" validate:"required"`
	Address  string        `form:"address" validate:"required"`
	Proof    *media.Upload `form:"paymentProof" validate:"required"`
}

// Submission is one checkout as sent to the order API.
type Submission struct {
	Fullname string
	GCash    string
	Address  string
	Items    []Item
	Total    decimal.Decimal
	Proof    media.Upload
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, s Submission) (orders.Order, error)
}

// Cart is not safe for concurrent use.
type Cart struct {
	storage Storage
	items   []Item
}

// Load reads the stored cart. A missing key is an empty cart. Lines without an
// id or with quantity < 1 are dropped and duplicate ids merged, so a hand-edited
// file still yields a valid cart.
func Load(s Storage) (*Cart, error) {
	c := &Cart{storage: s}
	b, err := s.Get(Key)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	if len(b) == 0 {
		return c, nil
	}
	var stored []Item
	if err := json.Unmarshal(b, &stored); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	c.items = normalize(stored)
	return c, nil
}

func normalize(items []Item) []Item {
	var out []Item
	at := make(map[string]int, len(items))
	for _, it := range items {
		it.ID = strings.TrimSpace(it.ID)
		if it.ID == "" || it.Quantity < 1 {
			continue
		}
		if i, ok := at[it.ID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		at[it.ID] = len(out)
		out = append(out, it)
	}
	return out
}

func (c *Cart) Items() []Item { return append([]Item(nil), c.items...) }

// Add puts one unit of the product in the cart, merging by id.
func (c *Cart) Add(id, name string, price decimal.Decimal) error {
	return c.AddQuantity(id, name, price, 1)
}

func (c *Cart) AddQuantity(id, name string, price decimal.Decimal, n int) error {
	if n < 1 {
		return ErrInvalidQuantity
	}
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Quantity += n
			return c.save()
		}
	}
	c.items = append(c.items, Item{ID: id, Name: name, Price: price, Quantity: n})
	return c.save()
}

// Remove drops the line at index; out of range is a no-op.
func (c *Cart) Remove(index int) error {
	if index < 0 || index >= len(c.items) {
		return nil
	}
	c.items = append(c.items[:index], c.items[index+1:]...)
	return c.save()
}

func (c *Cart) Clear() error {
	c.items = nil
	if err := c.storage.Remove(Key); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (c *Cart) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

func (c *Cart) Count() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Summary renders one "2x Deck - ₱20.00" line per item.
func (c *Cart) Summary() []string {
	out := make([]string, 0, len(c.items))
	for _, it := range c.items {
		out = append(out, fmt.Sprintf("%dx %s - ₱%s", it.Quantity, it.Name, it.Subtotal().StringFixed(2)))
	}
	return out
}

// Checkout submits the cart. Nothing leaves the process when the cart is
// empty or the details are incomplete. The cart is cleared only after the
// order was accepted.
func (c *Cart) Checkout(ctx context.Context, placer OrderPlacer, d Details) (orders.Order, error) {
	if len(c.items) == 0 {
		return orders.Order{}, ErrEmptyCart
	}
	d.Fullname = strings.TrimSpace(d.Fullname)
	d.GCash = strings.TrimSpace(d.GCash)
	d.Address = strings.TrimSpace(d.Address)
	if err := apperr.Check(d).OrNil(); err != nil {
		return orders.Order{}, err
	}

	o, err := placer.PlaceOrder(ctx, Submission{
		Fullname: d.Fullname,
		GCash:    d.GCash,
		Address:  d.Address,
		Items:    c.Items(),
		Total:    c.Total(),
		Proof:    *d.Proof,
	})
	if err != nil {
		return orders.Order{}, err
	}
	if err := c.Clear(); err != nil {
		return o, err
	}
	return o, nil
}

func (c *Cart) save() error {
	b, err := json.Marshal(c.items)
	if err != nil {
		return err
	}
	if err := c.storage.Set(Key, b); err != nil {
		return fmt.Errorf("write cart: %w", err)
	}
	return nil
}
