// Package catalog manages the product catalogue: create, read, patch and
// delete, always through the field validator.
package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/stockroom-app/stockroom/internal/domain"
)

// Service is the catalogue write path.
type Service struct {
	store domain.LedgerStore
}

// New creates a catalogue service over store.
func New(store domain.LedgerStore) *Service {
	return &Service{store: store}
}

// Create validates in and stores it as a new product.
func (s *Service) Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error) {
	valid, err := domain.ValidateProductFields(in)
	if err != nil {
		return nil, err
	}
	p := valid.NewProduct()
	err = s.store.InTx(ctx, func(tx domain.LedgerTx) error {
		return tx.InsertProduct(ctx, &p)
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("product created",
		zap.Int64("product_id", p.ID),
		zap.String("name", p.Name),
		zap.String("category", string(p.Category)),
		zap.Int("quantity", p.Quantity))
	return &p, nil
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.store.GetProduct(ctx, id)
}

// List returns products ordered by id.
func (s *Service) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	return s.store.ListProducts(ctx, f)
}

// Update merges patch into the stored product. Quantity may only be set
// while no sale or purchase references the product; after that the
// accounting engine owns it.
func (s *Service) Update(ctx context.Context, id int64, patch domain.ProductPatch) (*domain.Product, error) {
	var updated domain.Product
	err := s.store.InTx(ctx, func(tx domain.LedgerTx) error {
		current, err := tx.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		if patch.TouchesQuantity() && *patch.Quantity != current.Quantity {
			refs, err := tx.LedgerRefs(ctx, id)
			if err != nil {
				return err
			}
			if refs > 0 {
				return domain.ErrQuantityLocked
			}
		}
		updated, err = patch.Apply(*current)
		if err != nil {
			return err
		}
		return tx.UpdateProduct(ctx, &updated)
	})
	if err != nil {
		return nil, err
	}
	zap.L().Info("product updated", zap.Int64("product_id", id))
	return &updated, nil
}

// Delete removes a product nothing references.
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.store.InTx(ctx, func(tx domain.LedgerTx) error {
		if _, err := tx.GetProduct(ctx, id); err != nil {
			return err
		}
		refs, err := tx.LedgerRefs(ctx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return domain.ErrProductReferenced
		}
		return tx.DeleteProduct(ctx, id)
	})
	if err != nil {
		return err
	}
	zap.L().Info("product deleted", zap.Int64("product_id", id))
	return nil
}
