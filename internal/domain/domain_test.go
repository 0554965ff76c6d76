package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

// ─── Stock Status Tests ─────────────────────────────────────────────────────

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		quantity int
		want     StockStatus
	}{
		{-3, StatusOut},
		{0, StatusOut},
		{1, StatusLow},
		{5, StatusLow},
		{9, StatusLow},
		{10, StatusIn},
		{50, StatusIn},
	}

	for _, tt := range tests {
		got := DeriveStatus(tt.quantity)
		if got != tt.want {
			t.Errorf("DeriveStatus(%d) = %s, want %s", tt.quantity, got, tt.want)
		}
	}
}

func TestProduct_Status(t *testing.T) {
	p := Product{Quantity: 25}
	if p.Status() != StatusIn {
		t.Errorf("Status() = %s, want IN", p.Status())
	}
}

func TestCategory_Valid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("%q should be valid", c)
		}
	}
	for _, c := range []Category{"", "Uniform", "books", "electronics"} {
		if c.Valid() {
			t.Errorf("%q should be invalid", c)
		}
	}
}

// ─── Validator Tests ────────────────────────────────────────────────────────

func validInput() ProductInput {
	return ProductInput{
		Name:     "PE Uniform",
		Quantity: 30,
		Price:    decimal.NewFromInt(15000),
		Category: CategoryUniform,
	}
}

func TestValidateProductFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ProductInput)
		wantErr error
	}{
		{"valid", func(*ProductInput) {}, nil},
		{"unknown category", func(in *ProductInput) { in.Category = "electronics" }, ErrInvalidCategory},
		{"empty category", func(in *ProductInput) { in.Category = "" }, ErrInvalidCategory},
		{"negative quantity", func(in *ProductInput) { in.Quantity = -1 }, ErrInvalidQuantity},
		{"zero quantity ok", func(in *ProductInput) { in.Quantity = 0 }, nil},
		{"quantity at limit ok", func(in *ProductInput) { in.Quantity = MaxQuantity }, nil},
		{"quantity over limit", func(in *ProductInput) { in.Quantity = MaxQuantity + 1 }, ErrInvalidQuantity},
		{"negative price", func(in *ProductInput) { in.Price = decimal.NewFromFloat(-0.01) }, ErrInvalidPrice},
		{"zero price ok", func(in *ProductInput) { in.Price = decimal.Zero }, nil},
		{"empty name", func(in *ProductInput) { in.Name = "" }, ErrInvalidName},
		{"whitespace name", func(in *ProductInput) { in.Name = "   \t" }, ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := ValidateProductFields(in)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if !IsValidation(err) {
				t.Errorf("error %v should be a *ValidationError", err)
			}
		})
	}
}

func TestValidateProductFields_Normalises(t *testing.T) {
	in := validInput()
	in.Name = "  Physics Book  "
	in.Category = " BOOK "
	in.Description = " textbook "

	got, err := ValidateProductFields(in)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Physics Book" {
		t.Errorf("Name = %q, want %q", got.Name, "Physics Book")
	}
	if got.Category != CategoryBook {
		t.Errorf("Category = %q, want %q", got.Category, CategoryBook)
	}
	if got.Description != "textbook" {
		t.Errorf("Description = %q, want %q", got.Description, "textbook")
	}
}

func TestValidationError_Field(t *testing.T) {
	in := validInput()
	in.Price = decimal.NewFromInt(-5)
	_, err := ValidateProductFields(in)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if ve.Field != "price" {
		t.Errorf("Field = %q, want price", ve.Field)
	}
}

// ─── Patch Tests ────────────────────────────────────────────────────────────

func ptr[T any](v T) *T { return &v }

func TestProductPatch_Apply(t *testing.T) {
	base := Product{
		ID:          7,
		Name:        "Calculator",
		Quantity:    50,
		Price:       decimal.NewFromInt(999),
		Category:    CategoryOthers,
		Description: "scientific",
	}

	t.Run("omitted fields keep prior values", func(t *testing.T) {
		got, err := ProductPatch{Price: ptr(decimal.NewFromInt(1099))}.Apply(base)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Price.Equal(decimal.NewFromInt(1099)) {
			t.Errorf("Price = %s, want 1099", got.Price)
		}
		if got.Name != "Calculator" || got.Quantity != 50 || got.Description != "scientific" {
			t.Errorf("untouched fields changed: %+v", got)
		}
	})

	t.Run("empty description clears it", func(t *testing.T) {
		got, err := ProductPatch{Description: ptr("")}.Apply(base)
		if err != nil {
			t.Fatal(err)
		}
		if got.Description != "" {
			t.Errorf("Description = %q, want empty", got.Description)
		}
	})

	t.Run("invalid supplied field rejected", func(t *testing.T) {
		_, err := ProductPatch{Category: ptr(Category("food"))}.Apply(base)
		if !errors.Is(err, ErrInvalidCategory) {
			t.Errorf("error = %v, want ErrInvalidCategory", err)
		}
		_, err = ProductPatch{Name: ptr(" ")}.Apply(base)
		if !errors.Is(err, ErrInvalidName) {
			t.Errorf("error = %v, want ErrInvalidName", err)
		}
		_, err = ProductPatch{Quantity: ptr(-2)}.Apply(base)
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("error = %v, want ErrInvalidQuantity", err)
		}
		_, err = ProductPatch{Quantity: ptr(MaxQuantity + 1)}.Apply(base)
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("error = %v, want ErrInvalidQuantity", err)
		}
	})

	t.Run("base is not mutated", func(t *testing.T) {
		_, _ = ProductPatch{Name: ptr("Graphing Calculator")}.Apply(base)
		if base.Name != "Calculator" {
			t.Errorf("base mutated: %q", base.Name)
		}
	})
}

func TestProductPatch_TouchesQuantity(t *testing.T) {
	if (ProductPatch{Name: ptr("x")}).TouchesQuantity() {
		t.Error("name-only patch should not touch quantity")
	}
	if !(ProductPatch{Quantity: ptr(0)}).TouchesQuantity() {
		t.Error("quantity patch should touch quantity")
	}
}

// ─── Error Tests ────────────────────────────────────────────────────────────

func TestAccountingError_Unwrap(t *testing.T) {
	err := error(&AccountingError{Op: "sale", ProductID: 1, Err: ErrInsufficientStock})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Error("AccountingError should unwrap to its sentinel")
	}
	if err.Error() != "sale for product 1: insufficient stock" {
		t.Errorf("Error() = %q", err.Error())
	}
}
