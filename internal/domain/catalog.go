package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ─── Catalog Validation ─────────────────────────────────────────────────────

// ProductInput is the candidate for a new product.
type ProductInput struct {
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"`
}

// ValidateProductFields checks a candidate product and returns it normalised
// (trimmed text, lower-case category). The first failing field wins.
func ValidateProductFields(in ProductInput) (ProductInput, error) {
	in.Category = normalizeCategory(in.Category)
	if err := checkCategory(in.Category); err != nil {
		return ProductInput{}, err
	}
	if err := checkQuantity(in.Quantity); err != nil {
		return ProductInput{}, err
	}
	if err := checkPrice(in.Price); err != nil {
		return ProductInput{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := checkName(in.Name); err != nil {
		return ProductInput{}, err
	}
	in.Description = strings.TrimSpace(in.Description)
	in.Image = strings.TrimSpace(in.Image)
	return in, nil
}

// NewProduct builds an unsaved product from a validated input.
func (in ProductInput) NewProduct() Product {
	return Product{
		Name:        in.Name,
		Quantity:    in.Quantity,
		Price:       in.Price,
		Category:    in.Category,
		Description: in.Description,
		Image:       in.Image,
	}
}

// ProductPatch is a partial update. A nil field keeps the stored value.
type ProductPatch struct {
	Name        *string          `json:"name,omitempty"`
	Quantity    *int             `json:"quantity,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Category    *Category        `json:"category,omitempty"`
	Description *string          `json:"description,omitempty"`
	Image       *string          `json:"image,omitempty"`
}

// TouchesQuantity reports whether the patch sets quantity.
func (pp ProductPatch) TouchesQuantity() bool { return pp.Quantity != nil }

// Apply merges the supplied fields over p, validating only those fields.
func (pp ProductPatch) Apply(p Product) (Product, error) {
	if pp.Category != nil {
		c := normalizeCategory(*pp.Category)
		if err := checkCategory(c); err != nil {
			return Product{}, err
		}
		p.Category = c
	}
	if pp.Quantity != nil {
		if err := checkQuantity(*pp.Quantity); err != nil {
			return Product{}, err
		}
		p.Quantity = *pp.Quantity
	}
	if pp.Price != nil {
		if err := checkPrice(*pp.Price); err != nil {
			return Product{}, err
		}
		p.Price = *pp.Price
	}
	if pp.Name != nil {
		name := strings.TrimSpace(*pp.Name)
		if err := checkName(name); err != nil {
			return Product{}, err
		}
		p.Name = name
	}
	if pp.Description != nil {
		p.Description = strings.TrimSpace(*pp.Description)
	}
	if pp.Image != nil {
		p.Image = strings.TrimSpace(*pp.Image)
	}
	return p, nil
}

func normalizeCategory(c Category) Category {
	return Category(strings.ToLower(strings.TrimSpace(string(c))))
}

func checkCategory(c Category) error {
	if !c.Valid() {
		return &ValidationError{Field: "category", Err: ErrInvalidCategory}
	}
	return nil
}

func checkQuantity(q int) error {
	if q < 0 || q > MaxQuantity {
		return &ValidationError{Field: "quantity", Err: ErrInvalidQuantity}
	}
	return nil
}

func checkPrice(p decimal.Decimal) error {
	if p.IsNegative() {
		return &ValidationError{Field: "price", Err: ErrInvalidPrice}
	}
	return nil
}

func checkName(name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Err: ErrInvalidName}
	}
	return nil
}
