package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"crudstore.app/internal/auth"
)

var _ auth.Store = (*Store)(nil)

func (s *Store) UserByUsername(ctx context.Context, username string) (auth.User, error) {
	if s.db == nil {
		return auth.User{}, errNoDB
	}
	var u auth.User
	err := s.db.QueryRowContext(ctx, `
		select id, username, password, is_enabled, account_non_expired,
		       account_non_locked, credentials_non_expired, created_at
		from users
		where username = $1
	`, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Enabled, &u.AccountNonExpired,
		&u.AccountNonLocked, &u.CredentialsNonExpired, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, auth.ErrNotFound
	}
	if err != nil {
		return auth.User{}, err
	}

	rows, err := s.db.QueryContext(ctx, `
		select r.id, r.role_name, p.id, p.name
		from user_roles ur
		join roles r on r.id = ur.role_id
		left join role_permissions rp on rp.role_id = r.id
		left join permissions p on p.id = rp.permission_id
		where ur.user_id = $1
		order by r.id, p.id
	`, u.ID)
	if err != nil {
		return auth.User{}, err
	}
	defer rows.Close()
	u.Roles, err = scanRoles(rows)
	if err != nil {
		return auth.User{}, err
	}
	return u, nil
}

func (s *Store) RolesByName(ctx context.Context, names []auth.RoleName) ([]auth.Role, error) {
	if s.db == nil {
		return nil, errNoDB
	}
	if len(names) == 0 {
		return nil, nil
	}
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = string(n)
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		select r.id, r.role_name, p.id, p.name
		from roles r
		left join role_permissions rp on rp.role_id = r.id
		left join permissions p on p.id = rp.permission_id
		where r.role_name in (%s)
		order by r.id, p.id
	`, placeholders(1, len(names))), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRoles(rows)
}

func (s *Store) CreateUser(ctx context.Context, user auth.User) (auth.User, error) {
	if s.db == nil {
		return auth.User{}, errNoDB
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return auth.User{}, err
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx, `
		insert into users (username, password, is_enabled, account_non_expired,
		                   account_non_locked, credentials_non_expired)
		values ($1, $2, $3, $4, $5, $6)
		returning id, created_at
	`, user.Username, user.PasswordHash, user.Enabled, user.AccountNonExpired,
		user.AccountNonLocked, user.CredentialsNonExpired).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrUniqueViolation {
			return auth.User{}, auth.ErrConflict
		}
		return auth.User{}, err
	}
	for _, role := range user.Roles {
		if _, err := tx.ExecContext(ctx, `
			insert into user_roles (user_id, role_id) values ($1, $2)
			on conflict do nothing
		`, user.ID, role.ID); err != nil {
			if pgErr, ok := maybePgError(err); ok && pgErr.Code == pgErrForeignKeyViolation {
				return auth.User{}, fmt.Errorf("%w: role %s", auth.ErrUnknownRole, role.Name)
			}
			return auth.User{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return auth.User{}, err
	}
	return user, nil
}

// scanRoles folds (role, permission) rows ordered by role id into roles.
func scanRoles(rows *sql.Rows) ([]auth.Role, error) {
	var (
		out   []auth.Role
		index = map[int64]int{}
	)
	for rows.Next() {
		var (
			roleID   int64
			roleName string
			permID   sql.NullInt64
			permName sql.NullString
		)
		if err := rows.Scan(&roleID, &roleName, &permID, &permName); err != nil {
			return nil, err
		}
		i, ok := index[roleID]
		if !ok {
			i = len(out)
			index[roleID] = i
			out = append(out, auth.Role{ID: roleID, Name: auth.RoleName(roleName)})
		}
		if permID.Valid {
			out[i].Permissions = append(out[i].Permissions, auth.Permission{ID: permID.Int64, Name: permName.String})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
