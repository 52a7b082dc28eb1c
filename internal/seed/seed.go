// Package seed loads the demo accounts and catalog.
package seed

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"crudstore.app/internal/auth"
	"crudstore.app/internal/catalog"
)

// DemoUser is an account created by Run.
type DemoUser struct {
	Username string
	Password string
	Roles    []auth.RoleName
}

// DemoProduct is a product created by Run under the named category.
type DemoProduct struct {
	Name        string
	Description string
	Price       catalog.Price
	Category    string
}

// Default data set.
var (
	Users = []DemoUser{
		{Username: "admin", Password: "admin123", Roles: []auth.RoleName{auth.RoleAdmin}},
		{Username: "user", Password: "user123", Roles: []auth.RoleName{auth.RoleUser}},
	}
	Categories = []catalog.CategoryInput{
		{Name: "Electrónica", Description: "Dispositivos electrónicos"},
		{Name: "Hogar", Description: "Artículos para el hogar"},
		{Name: "Ropa", Description: "Prendas de vestir"},
	}
	Products = []DemoProduct{
		{Name: "Laptop Gamer", Description: "Laptop de alto rendimiento", Price: 129999, Category: "Electrónica"},
		{Name: "Aspiradora", Description: "Aspiradora sin bolsa", Price: 29999, Category: "Hogar"},
		{Name: "Chaqueta", Description: "Chaqueta impermeable", Price: 8999, Category: "Ropa"},
	}
)

type config struct {
	hashCost int
	log      *zap.Logger
}

// Option configures Run.
type Option func(*config)

// WithHashCost sets the bcrypt cost of the seeded passwords.
func WithHashCost(cost int) Option {
	return func(c *config) { c.hashCost = cost }
}

// WithLogger reports created records.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.log = l
		}
	}
}

// Run creates the demo users, categories and products that are missing.
// Records that already exist are left untouched, so Run can be repeated.
func Run(ctx context.Context, users auth.Store, items catalog.Store, opts ...Option) error {
	cfg := config{hashCost: bcrypt.DefaultCost, log: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := seedUsers(ctx, users, cfg); err != nil {
		return err
	}
	return seedCatalog(ctx, items, cfg)
}

func seedUsers(ctx context.Context, store auth.Store, cfg config) error {
	for _, du := range Users {
		_, err := store.UserByUsername(ctx, du.Username)
		if err == nil {
			continue
		}
		if !errors.Is(err, auth.ErrNotFound) {
			return fmt.Errorf("seed: lookup %s: %w", du.Username, err)
		}
		roles, err := store.RolesByName(ctx, du.Roles)
		if err != nil {
			return fmt.Errorf("seed: roles for %s: %w", du.Username, err)
		}
		if len(roles) == 0 {
			return fmt.Errorf("seed: roles %v missing, run the SQL seeds first: %w", du.Roles, auth.ErrUnknownRole)
		}
		hash, err := auth.HashPassword(du.Password, cfg.hashCost)
		if err != nil {
			return fmt.Errorf("seed: hash password: %w", err)
		}
		_, err = store.CreateUser(ctx, auth.User{
			Username:              du.Username,
			PasswordHash:          hash,
			Enabled:               true,
			AccountNonExpired:     true,
			AccountNonLocked:      true,
			CredentialsNonExpired: true,
			Roles:                 roles,
		})
		if err != nil && !errors.Is(err, auth.ErrConflict) {
			return fmt.Errorf("seed: create %s: %w", du.Username, err)
		}
		cfg.log.Info("seeded user", zap.String("username", du.Username))
	}
	return nil
}

func seedCatalog(ctx context.Context, store catalog.Store, cfg config) error {
	existing, err := store.ListActiveCategories(ctx)
	if err != nil {
		return fmt.Errorf("seed: list categories: %w", err)
	}
	byName := make(map[string]int64, len(existing))
	for _, c := range existing {
		byName[c.Name] = c.ID
	}
	for _, in := range Categories {
		if _, ok := byName[in.Name]; ok {
			continue
		}
		taken, err := store.CategoryNameTaken(ctx, in.Name, 0)
		if err != nil {
			return fmt.Errorf("seed: check category %s: %w", in.Name, err)
		}
		if taken {
			// Present but deactivated; leave it alone.
			continue
		}
		c, err := store.CreateCategory(ctx, in)
		if err != nil {
			return fmt.Errorf("seed: create category %s: %w", in.Name, err)
		}
		byName[c.Name] = c.ID
		cfg.log.Info("seeded category", zap.String("nombre", c.Name))
	}

	for _, dp := range Products {
		catID, ok := byName[dp.Category]
		if !ok {
			continue
		}
		list, err := store.ListActiveProductsByCategory(ctx, catID)
		if err != nil {
			return fmt.Errorf("seed: list products: %w", err)
		}
		if containsProduct(list, dp.Name) {
			continue
		}
		p, err := store.CreateProduct(ctx, catalog.ProductInput{
			Name:        dp.Name,
			Description: dp.Description,
			Price:       dp.Price,
			CategoryID:  catID,
		})
		if err != nil {
			return fmt.Errorf("seed: create product %s: %w", dp.Name, err)
		}
		cfg.log.Info("seeded product", zap.String("name", p.Name), zap.Stringer("precio", p.Price))
	}
	return nil
}

func containsProduct(list []catalog.Product, name string) bool {
	for _, p := range list {
		if p.Name == name {
			return true
		}
	}
	return false
}
