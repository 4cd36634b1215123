package catalog

import (
	"strconv"
	"strings"

	"github.com/ariefcatur/go-storefront/internal/apperr"
	"github.com/ariefcatur/go-storefront/internal/media"
	"github.com/shopspring/decimal"
)

// CreateInput is the raw admin submission, as it arrives in the multipart form.
type CreateInput struct {
	Name        string         `form:"name" validate:"required"`
	Price       string         `form:"price" validate:"required,numeric"`
	Category    string         `form:"category" validate:"required"`
	Description string         `form:"description"`
	Stock       string         `form:"stock" validate:"omitempty,number"`
	Images      []media.Upload `form:"images" validate:"min=1,max=6"`

	// BaseURL is scheme://host of the request, used to build image URLs.
	BaseURL string `form:"-"`
}

// NewProduct is a CreateInput that passed validation.
type NewProduct struct {
	Name          string
	Price         decimal.Decimal
	Category      Category
	KnownCategory bool
	RawCategory   string
	Description   string
	Stock         int
	Images        []media.Upload
}

// UpdateInput is a partial update; nil means "not supplied".
type UpdateInput struct {
	Name        *string          `json:"name"`
	Price       *decimal.Decimal `json:"price"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
}

func (in UpdateInput) Empty() bool {
	return in.Name == nil && in.Price == nil && in.Description == nil && in.Category == nil && in.Stock == nil
}

func ValidateCreate(in CreateInput) (NewProduct, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Price = strings.TrimSpace(in.Price)
	in.Category = strings.TrimSpace(in.Category)
	in.Stock = strings.TrimSpace(in.Stock)

	ve := apperr.Check(in)
	out := NewProduct{
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Images:      in.Images,
		RawCategory: in.Category,
	}

	if in.Price != "" {
		p, err := decimal.NewFromString(in.Price)
		switch {
		case err != nil:
			if !hasField(ve, "price") {
				ve.Add("price", "must be a number")
			}
		case apperr.CheckMoney(ve, "price", p):
			out.Price = p
		}
	}
	if in.Stock != "" && !hasField(ve, "stock") {
		n, err := strconv.Atoi(in.Stock)
		if err != nil || n < 0 {
			ve.Add("stock", "must be a non-negative whole number")
		} else if apperr.CheckCount(ve, "stock", n) {
			out.Stock = n
		}
	}
	if in.Category != "" {
		out.Category, out.KnownCategory = ParseCategory(in.Category)
	}
	if len(in.Images) <= MaxImages {
		for _, up := range in.Images {
			if err := media.RequireImage(up); err != nil {
				ve.Add("images", err.Error())
			}
		}
	}

	if err := ve.OrNil(); err != nil {
		return NewProduct{}, err
	}
	return out, nil
}

// ValidateUpdate checks only the supplied fields.
func ValidateUpdate(in UpdateInput) error {
	ve := apperr.Check(in)
	if in.Empty() {
		ve.Add("_", "no fields to update")
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		ve.Add("name", "must not be empty")
	}
	if in.Price != nil {
		apperr.CheckMoney(ve, "price", *in.Price)
	}
	if in.Stock != nil && *in.Stock >= 0 {
		apperr.CheckCount(ve, "stock", *in.Stock)
	}
	if in.Category != nil && strings.TrimSpace(*in.Category) == "" {
		ve.Add("category", "must not be empty")
	}
	return ve.OrNil()
}

func hasField(ve *apperr.ValidationError, field string) bool {
	for _, f := range ve.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}
