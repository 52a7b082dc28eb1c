package pg

import (
	"context"
	"database/sql"
	"errors"

	"crudstore.app/internal/catalog"
)

var _ catalog.Store = (*Store)(nil)

const categoryColumns = `id, nombre, coalesce(descripcion, ''), activa, fecha_creacion`

const productSelect = `
	select p.id, p.name, p.descripcion, p.precio_cents, p.activo,
	       c.id, c.nombre, p.fecha_creacion
	from productos p
	join categorias c on c.id = p.categoria_id`

type scanner interface {
	Scan(dest ...any) error
}

func scanCategory(row scanner) (catalog.Category, error) {
	var c catalog.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Active, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Category{}, catalog.ErrNotFound
	}
	return c, err
}

func scanProduct(row scanner) (catalog.Product, error) {
	var (
		p     catalog.Product
		cents int64
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &cents, &p.Active, &p.CategoryID, &p.CategoryName, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Product{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Product{}, err
	}
	p.Price = catalog.Price(cents)
	return p, nil
}

func (s *Store) CreateCategory(ctx context.Context, in catalog.CategoryInput) (catalog.Category, error) {
	if s.db == nil {
		return catalog.Category{}, errNoDB
	}
	c, err := scanCategory(s.db.QueryRowContext(ctx, `
		insert into categorias (nombre, descripcion, activa)
		values ($1, $2, true)
		returning `+categoryColumns, in.Name, nullIfEmpty(in.Description)))
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
		return catalog.Category{}, catalog.ErrConflict
	}
	return c, err
}

func (s *Store) GetCategory(ctx context.Context, id int64) (catalog.Category, error) {
	if s.db == nil {
		return catalog.Category{}, errNoDB
	}
	return scanCategory(s.db.QueryRowContext(ctx, `select `+categoryColumns+` from categorias where id = $1`, id))
}

func (s *Store) ListActiveCategories(ctx context.Context) ([]catalog.Category, error) {
	if s.db == nil {
		return nil, errNoDB
	}
	rows, err := s.db.QueryContext(ctx, `select `+categoryColumns+` from categorias where activa order by id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []catalog.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) CategoryNameTaken(ctx context.Context, name string, exceptID int64) (bool, error) {
	if s.db == nil {
		return false, errNoDB
	}
	var taken bool
	err := s.db.QueryRowContext(ctx, `
		select exists(select 1 from categorias where nombre = $1 and id <> $2)
	`, name, exceptID).Scan(&taken)
	return taken, err
}

func (s *Store) UpdateCategory(ctx context.Context, id int64, in catalog.CategoryInput) (catalog.Category, error) {
	if s.db == nil {
		return catalog.Category{}, errNoDB
	}
	c, err := scanCategory(s.db.QueryRowContext(ctx, `
		update categorias set nombre = $1, descripcion = $2
		where id = $3
		returning `+categoryColumns, in.Name, nullIfEmpty(in.Description), id))
	if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
		return catalog.Category{}, catalog.ErrConflict
	}
	return c, err
}

func (s *Store) DeactivateCategory(ctx context.Context, id int64) error {
	return s.execAffecting(ctx, `update categorias set activa = false where id = $1`, id)
}

func (s *Store) CreateProduct(ctx context.Context, in catalog.ProductInput) (catalog.Product, error) {
	if s.db == nil {
		return catalog.Product{}, errNoDB
	}
	var id int64
	err := s.db.QueryRowContext(ctx, `
		insert into productos (name, descripcion, precio_cents, activo, categoria_id)
		values ($1, $2, $3, true, $4)
		returning id
	`, in.Name, in.Description, int64(in.Price), in.CategoryID).Scan(&id)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return catalog.Product{}, catalog.ErrNotFound
		}
		return catalog.Product{}, err
	}
	return s.GetProduct(ctx, id)
}

func (s *Store) GetProduct(ctx context.Context, id int64) (catalog.Product, error) {
	if s.db == nil {
		return catalog.Product{}, errNoDB
	}
	return scanProduct(s.db.QueryRowContext(ctx, productSelect+` where p.id = $1`, id))
}

func (s *Store) ListActiveProducts(ctx context.Context) ([]catalog.Product, error) {
	return s.listProducts(ctx, productSelect+` where p.activo order by p.id`)
}

func (s *Store) ListActiveProductsByCategory(ctx context.Context, categoryID int64) ([]catalog.Product, error) {
	return s.listProducts(ctx, productSelect+` where p.activo and p.categoria_id = $1 order by p.id`, categoryID)
}

func (s *Store) listProducts(ctx context.Context, query string, args ...any) ([]catalog.Product, error) {
	if s.db == nil {
		return nil, errNoDB
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []catalog.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) UpdateProduct(ctx context.Context, id int64, in catalog.ProductInput) (catalog.Product, error) {
	if s.db == nil {
		return catalog.Product{}, errNoDB
	}
	res, err := s.db.ExecContext(ctx, `
		update productos
		set name = $1, descripcion = $2, precio_cents = $3, categoria_id = $4
		where id = $5
	`, in.Name, in.Description, int64(in.Price), in.CategoryID, id)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
			return catalog.Product{}, catalog.ErrNotFound
		}
		return catalog.Product{}, err
	}
	if aff, err := res.RowsAffected(); err != nil {
		return catalog.Product{}, err
	} else if aff == 0 {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return s.GetProduct(ctx, id)
}

func (s *Store) DeactivateProduct(ctx context.Context, id int64) error {
	return s.execAffecting(ctx, `update productos set activo = false where id = $1`, id)
}

func (s *Store) execAffecting(ctx context.Context, query string, args ...any) error {
	if s.db == nil {
		return errNoDB
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
