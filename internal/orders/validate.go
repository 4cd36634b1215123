package orders

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/media"
	"github.com/shopspring/decimal"
)

// CreateInput is the checkout form as posted by the storefront.
type CreateInput struct {
	Fullname string        `form:"fullname" validate:"required"`
	GCash    string        `form:"gcash" validate:"required"`
	Address  string        `form:"address" validate:"required"`
	Items    string        `form:"items" validate:"required"` // JSON array of cart items
	Total    string        `form:"total" validate:"required,numeric"`
	Proof    *media.Upload `form:"paymentProof" validate:"required"`

	BaseURL string `form:"-"`
}

type NewOrder struct {
	Fullname string
	GCash    string
	Address  string
	Items    []Item
	Total    decimal.Decimal
	Proof    media.Upload
}

func ValidateCreate(in CreateInput) (NewOrder, error) {
	in.Fullname = strings.TrimSpace(in.Fullname)
	in.GCash = strings.TrimSpace(in.GCash)
	in.Address = strings.TrimSpace(in.Address)
	in.Items = strings.TrimSpace(in.Items)
	in.Total = strings.TrimSpace(in.Total)

	ve := apperr.Check(in)
	out := NewOrder{Fullname: in.Fullname, GCash: in.GCash, Address: in.Address}

	if in.Items != "" {
		if err := json.Unmarshal([]byte(in.Items), &out.Items); err != nil {
			ve.Add("items", "must be a JSON array of cart items")
		} else if len(out.Items) == 0 {
			ve.Add("items", "must not be empty")
		}
		for i, it := range out.Items {
			if strings.TrimSpace(it.ProductID) == "" {
				ve.Add(fmt.Sprintf("items[%d].id", i), "is required")
			}
			if it.Quantity < 1 {
				ve.Add(fmt.Sprintf("items[%d].quantity", i), "must be >= 1")
			} else {
				apperr.CheckCount(ve, fmt.Sprintf("items[%d].quantity", i), it.Quantity)
			}
			apperr.CheckMoney(ve, fmt.Sprintf("items[%d].price", i), it.Price)
		}
	}

	if in.Total != "" {
		if t, err := decimal.NewFromString(in.Total); err == nil {
			apperr.CheckMoney(ve, "total", t)
			out.Total = t
		}
	}

	if in.Proof != nil {
		if err := media.RequireImage(*in.Proof); err != nil {
			ve.Add("paymentProof", err.Error())
		}
		out.Proof = *in.Proof
	}

	if err := ve.OrNil(); err != nil {
		return NewOrder{}, err
	}
	return out, nil
}
