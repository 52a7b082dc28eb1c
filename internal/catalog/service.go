package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Service applies catalog rules on top of a Store.
type Service struct {
	store Store
	log   *zap.Logger
}

// NewService constructs a catalog service. A nil logger discards output.
func NewService(store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log}
}

func (s *Service) CreateCategory(ctx context.Context, in CategoryInput) (Category, error) {
	in, err := normalizeCategory(in)
	if err != nil {
		return Category{}, err
	}
	taken, err := s.store.CategoryNameTaken(ctx, in.Name, 0)
	if err != nil {
		return Category{}, err
	}
	if taken {
		return Category{}, fmt.Errorf("%w: category %q already exists", ErrConflict, in.Name)
	}
	c, err := s.store.CreateCategory(ctx, in)
	if err != nil {
		return Category{}, err
	}
	s.log.Info("category created", zap.Int64("id", c.ID), zap.String("name", c.Name))
	return c, nil
}

func (s *Service) ListActiveCategories(ctx context.Context) ([]Category, error) {
	return s.store.ListActiveCategories(ctx)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (Category, error) {
	c, err := s.store.GetCategory(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Category{}, fmt.Errorf("%w: category %d", ErrNotFound, id)
	}
	return c, err
}

func (s *Service) UpdateCategory(ctx context.Context, id int64, in CategoryInput) (Category, error) {
	in, err := normalizeCategory(in)
	if err != nil {
		return Category{}, err
	}
	current, err := s.GetCategory(ctx, id)
	if err != nil {
		return Category{}, err
	}
	if current.Name != in.Name {
		taken, err := s.store.CategoryNameTaken(ctx, in.Name, id)
		if err != nil {
			return Category{}, err
		}
		if taken {
			return Category{}, fmt.Errorf("%w: another category is named %q", ErrConflict, in.Name)
		}
	}
	return s.store.UpdateCategory(ctx, id, in)
}

// DeleteCategory deactivates the category. Its products are left untouched.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeactivateCategory(ctx, id); err != nil {
		return err
	}
	s.log.Info("category deactivated", zap.Int64("id", id))
	return nil
}

func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	in, err := normalizeProduct(in)
	if err != nil {
		return Product{}, err
	}
	if _, err := s.GetCategory(ctx, in.CategoryID); err != nil {
		return Product{}, err
	}
	p, err := s.store.CreateProduct(ctx, in)
	if err != nil {
		return Product{}, err
	}
	s.log.Info("product created", zap.Int64("id", p.ID), zap.Int64("category_id", p.CategoryID))
	return p, nil
}

func (s *Service) GetProduct(ctx context.Context, id int64) (Product, error) {
	p, err := s.store.GetProduct(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return Product{}, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return p, err
}

func (s *Service) ListActiveProducts(ctx context.Context) ([]Product, error) {
	return s.store.ListActiveProducts(ctx)
}

func (s *Service) ListProductsByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	return s.store.ListActiveProductsByCategory(ctx, categoryID)
}

func (s *Service) UpdateProduct(ctx context.Context, id int64, in ProductInput) (Product, error) {
	in, err := normalizeProduct(in)
	if err != nil {
		return Product{}, err
	}
	if _, err := s.GetProduct(ctx, id); err != nil {
		return Product{}, err
	}
	if _, err := s.GetCategory(ctx, in.CategoryID); err != nil {
		return Product{}, err
	}
	return s.store.UpdateProduct(ctx, id, in)
}

// DeleteProduct deactivates the product.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeactivateProduct(ctx, id); err != nil {
		return err
	}
	s.log.Info("product deactivated", zap.Int64("id", id))
	return nil
}

func normalizeCategory(in CategoryInput) (CategoryInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	return in, checkInput(in)
}

func normalizeProduct(in ProductInput) (ProductInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	return in, checkInput(in)
}
