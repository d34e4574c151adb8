package postgres

import (
	"context"
	"errors"

	"todolist/api/internal/model"
	"todolist/api/internal/store"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, username, email, password_hash, created_at, updated_at`

func scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

// CreateUser relies on the unique constraints rather than a pre-check, so two
// concurrent registrations for the same email cannot both succeed.
func (s *Store) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	out, err := scanUser(s.pool.QueryRow(ctx, `
		insert into public.users (username, email, password_hash)
		values ($1, $2, $3)
		returning `+userColumns,
		u.Username, u.Email, u.PasswordHash,
	))
	if err != nil {
		return model.User{}, mapPgErr(err)
	}
	return out, nil
}

func (s *Store) ListUsers(ctx context.Context, f store.UserFilter) ([]model.User, error) {
	rows, err := s.pool.Query(ctx, `
		select `+userColumns+`
		from public.users
		order by id
		offset $1
		limit $2
	`, max(f.Offset, 0), limitOrDefault(f.Limit))
	if err != nil {
		return nil, mapPgErr(err)
	}
	defer rows.Close()

	out := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `
		select `+userColumns+`
		from public.users
		where id = $1
	`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `
		select `+userColumns+`
		from public.users
		where email = $1
	`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u model.User) (model.User, error) {
	out, err := scanUser(s.pool.QueryRow(ctx, `
		update public.users
		set username = $2,
		    email = $3,
		    password_hash = coalesce(nullif($4, ''), password_hash)
		where id = $1
		returning `+userColumns,
		u.ID, u.Username, u.Email, u.PasswordHash,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, store.ErrNotFound
		}
		return model.User{}, mapPgErr(err)
	}
	return out, nil
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `delete from public.users where id = $1`, id)
	if err != nil {
		return mapPgErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
