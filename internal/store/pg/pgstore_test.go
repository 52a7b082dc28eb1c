package pg

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crudstore.app/internal/auth"
	"crudstore.app/internal/catalog"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return New(db), mock
}

func TestUserByUsernameLoadsRolesAndPermissions(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery("select id, username, password.*from users.*where username = \\$1").
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password", "is_enabled", "account_non_expired", "account_non_locked", "credentials_non_expired", "created_at"}).
			AddRow(int64(1), "admin", "$2a$hash", true, true, false, true, created))
	mock.ExpectQuery("from user_roles ur.*where ur.user_id = \\$1").
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "role_name", "id", "name"}).
			AddRow(int64(1), "ADMIN", int64(1), "READ").
			AddRow(int64(1), "ADMIN", int64(4), "DELETE").
			AddRow(int64(3), "INVITED", int64(1), "READ"))

	u, err := store.UserByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, "$2a$hash", u.PasswordHash)
	assert.False(t, u.AccountNonLocked)
	require.Len(t, u.Roles, 2)
	assert.Equal(t, auth.RoleAdmin, u.Roles[0].Name)
	assert.Len(t, u.Roles[0].Permissions, 2)
	assert.ElementsMatch(t, []string{"ROLE_ADMIN", "ROLE_INVITED", "READ", "DELETE"}, auth.EffectiveAuthorities(u.Roles))
}

func TestUserByUsernameNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("from users").WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := store.UserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, auth.ErrNotFound)
}

func TestRolesByName(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("from roles r.*where r.role_name in \\(\\$1, \\$2\\)").
		WithArgs("USER", "INVITED").
		WillReturnRows(sqlmock.NewRows([]string{"id", "role_name", "id", "name"}).
			AddRow(int64(2), "USER", int64(1), "READ").
			AddRow(int64(2), "USER", int64(2), "CREATE").
			AddRow(int64(4), "INVITED", nil, nil))

	roles, err := store.RolesByName(context.Background(), []auth.RoleName{auth.RoleUser, auth.RoleInvited})
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Len(t, roles[0].Permissions, 2)
	assert.Empty(t, roles[1].Permissions)

	none, err := store.RolesByName(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCreateUserLinksRoles(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery("insert into users").
		WithArgs("dev", "hash", true, true, true, true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), now))
	mock.ExpectExec("insert into user_roles").WithArgs(int64(7), int64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	u, err := store.CreateUser(context.Background(), auth.User{
		Username: "dev", PasswordHash: "hash",
		Enabled: true, AccountNonExpired: true, AccountNonLocked: true, CredentialsNonExpired: true,
		Roles: []auth.Role{{ID: 4, Name: auth.RoleDeveloper}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), u.ID)
}

func TestCreateUserDuplicate(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("insert into users").WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})
	mock.ExpectRollback()

	_, err := store.CreateUser(context.Background(), auth.User{Username: "admin", PasswordHash: "h"})
	assert.ErrorIs(t, err, auth.ErrConflict)
}

func TestCreateCategoryConflict(t *testing.T) {
	store, mock := newMockStore(t)
	mock.ExpectQuery("insert into categorias").
		WithArgs("Hogar", sql.NullString{}).
		WillReturnError(&pgconn.PgError{Code: pgErrUniqueViolation})

	_, err := store.CreateCategory(context.Background(), catalog.CategoryInput{Name: "Hogar"})
	assert.ErrorIs(t, err, catalog.ErrConflict)
}

func TestCategoryQueries(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	cols := []string{"id", "nombre", "descripcion", "activa", "fecha_creacion"}

	mock.ExpectQuery("from categorias where id = \\$1").WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery("from categorias where activa order by id").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(1), "Ropa", "", true, now))
	mock.ExpectQuery("select exists").WithArgs("Ropa", int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec("update categorias set activa = false").WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := store.GetCategory(context.Background(), 9)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	list, err := store.ListActiveCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ropa", list[0].Name)

	taken, err := store.CategoryNameTaken(context.Background(), "Ropa", 2)
	require.NoError(t, err)
	assert.True(t, taken)

	assert.ErrorIs(t, store.DeactivateCategory(context.Background(), 3), catalog.ErrNotFound)
}

func TestProductQueries(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	cols := []string{"id", "name", "descripcion", "precio_cents", "activo", "id", "nombre", "fecha_creacion"}

	mock.ExpectQuery("insert into productos").
		WithArgs("Chaqueta", "Chaqueta impermeable", int64(8999), int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))
	mock.ExpectQuery("from productos p.*where p.id = \\$1").WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(5), "Chaqueta", "Chaqueta impermeable", int64(8999), true, int64(3), "Ropa", now))
	mock.ExpectQuery("where p.activo and p.categoria_id = \\$1").WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(cols))
	mock.ExpectExec("update productos").WillReturnError(&pgconn.PgError{Code: pgErrForeignKeyViolation})

	p, err := store.CreateProduct(context.Background(), catalog.ProductInput{
		Name: "Chaqueta", Description: "Chaqueta impermeable", Price: 8999, CategoryID: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, catalog.Price(8999), p.Price)
	assert.Equal(t, "Ropa", p.CategoryName)

	list, err := store.ListActiveProductsByCategory(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = store.UpdateProduct(context.Background(), 5, catalog.ProductInput{Name: "x", Description: "y", Price: 1, CategoryID: 99})
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestPingWithoutDB(t *testing.T) {
	s := &Store{}
	assert.True(t, errors.Is(s.Ping(context.Background()), errNoDB))
}
