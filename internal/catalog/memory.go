package catalog

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemory implements Store with in-process concurrency safety.
type InMemory struct {
	mu         sync.RWMutex
	nextCat    int64
	nextProd   int64
	categories map[int64]*Category
	products   map[int64]*Product
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty catalog.
func NewInMemory() *InMemory {
	return &InMemory{
		categories: make(map[int64]*Category),
		products:   make(map[int64]*Product),
	}
}

func (s *InMemory) CreateCategory(ctx context.Context, in CategoryInput) (Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Name == in.Name {
			return Category{}, ErrConflict
		}
	}
	s.nextCat++
	c := &Category{
		ID:          s.nextCat,
		Name:        in.Name,
		Description: in.Description,
		Active:      true,
		CreatedAt:   time.Now().UTC(),
	}
	s.categories[c.ID] = c
	return *c, nil
}

func (s *InMemory) GetCategory(ctx context.Context, id int64) (Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok {
		return Category{}, ErrNotFound
	}
	return *c, nil
}

func (s *InMemory) ListActiveCategories(ctx context.Context) ([]Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Category, 0, len(s.categories))
	for _, c := range s.categories {
		if c.Active {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) CategoryNameTaken(ctx context.Context, name string, exceptID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		if c.Name == name && c.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (s *InMemory) UpdateCategory(ctx context.Context, id int64, in CategoryInput) (Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return Category{}, ErrNotFound
	}
	for _, other := range s.categories {
		if other.ID != id && other.Name == in.Name {
			return Category{}, ErrConflict
		}
	}
	c.Name = in.Name
	c.Description = in.Description
	for _, p := range s.products {
		if p.CategoryID == id {
			p.CategoryName = in.Name
		}
	}
	return *c, nil
}

func (s *InMemory) DeactivateCategory(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[id]
	if !ok {
		return ErrNotFound
	}
	c.Active = false
	return nil
}

func (s *InMemory) CreateProduct(ctx context.Context, in ProductInput) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.categories[in.CategoryID]
	if !ok {
		return Product{}, ErrNotFound
	}
	s.nextProd++
	p := &Product{
		ID:           s.nextProd,
		Name:         in.Name,
		Description:  in.Description,
		Price:        in.Price,
		Active:       true,
		CategoryID:   c.ID,
		CategoryName: c.Name,
		CreatedAt:    time.Now().UTC(),
	}
	s.products[p.ID] = p
	return *p, nil
}

func (s *InMemory) GetProduct(ctx context.Context, id int64) (Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return *p, nil
}

func (s *InMemory) ListActiveProducts(ctx context.Context) ([]Product, error) {
	return s.listProducts(func(p *Product) bool { return p.Active }), nil
}

func (s *InMemory) ListActiveProductsByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	return s.listProducts(func(p *Product) bool { return p.Active && p.CategoryID == categoryID }), nil
}

func (s *InMemory) listProducts(keep func(*Product) bool) []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		if keep(p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *InMemory) UpdateProduct(ctx context.Context, id int64, in ProductInput) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	c, ok := s.categories[in.CategoryID]
	if !ok {
		return Product{}, ErrNotFound
	}
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.CategoryID = c.ID
	p.CategoryName = c.Name
	return *p, nil
}

func (s *InMemory) DeactivateProduct(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Active = false
	return nil
}
