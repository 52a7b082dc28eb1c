package catalog

import (
	"context"
	"time"
)

// Category groups products. Deleting a category only clears Active.
type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"nombre"`
	Description string    `json:"descripcion"`
	Active      bool      `json:"activa"`
	CreatedAt   time.Time `json:"fechaCreacion"`
}

// CategoryInput is the writable part of a category.
type CategoryInput struct {
	Name        string `json:"nombre" validate:"required,max=50"`
	Description string `json:"descripcion" validate:"max=150"`
}

// Product belongs to exactly one category. Deleting a product only clears
// Active.
type Product struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"descripcion"`
	Price        Price     `json:"precio"`
	Active       bool      `json:"activo"`
	CategoryID   int64     `json:"categoriaId"`
	CategoryName string    `json:"categoriaNombre"`
	CreatedAt    time.Time `json:"fechaCreacion"`
}

// ProductInput is the writable part of a product.
type ProductInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"descripcion" validate:"required,max=255"`
	Price       Price  `json:"precio" validate:"gt=0"`
	CategoryID  int64  `json:"categoriaId" validate:"required,gt=0"`
}

// Store persists categories and products.
type Store interface {
	CreateCategory(ctx context.Context, in CategoryInput) (Category, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
	ListActiveCategories(ctx context.Context) ([]Category, error)
	// CategoryNameTaken reports whether another category than exceptID
	// already uses name.
	CategoryNameTaken(ctx context.Context, name string, exceptID int64) (bool, error)
	UpdateCategory(ctx context.Context, id int64, in CategoryInput) (Category, error)
	DeactivateCategory(ctx context.Context, id int64) error

	CreateProduct(ctx context.Context, in ProductInput) (Product, error)
	GetProduct(ctx context.Context, id int64) (Product, error)
	ListActiveProducts(ctx context.Context) ([]Product, error)
	ListActiveProductsByCategory(ctx context.Context, categoryID int64) ([]Product, error)
	UpdateProduct(ctx context.Context, id int64, in ProductInput) (Product, error)
	DeactivateProduct(ctx context.Context, id int64) error
}
