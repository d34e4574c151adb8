package postgres

import (
	"context"
	"errors"

	"todolist/api/internal/model"
	"todolist/api/internal/store"

	"github.com/jackc/pgx/v5"
)

const todoColumns = `id, title, description, state, user_id, created_at, updated_at`

func scanTodo(row pgx.Row) (model.Todo, error) {
	var t model.Todo
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.State,
		&t.UserID,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

func (s *Store) CreateTodo(ctx context.Context, t model.Todo) (model.Todo, error) {
	out, err := scanTodo(s.pool.QueryRow(ctx, `
		insert into public.todos (title, description, state, user_id)
		values ($1, $2, $3, $4)
		returning `+todoColumns,
		t.Title, t.Description, string(t.State), t.UserID,
	))
	if err != nil {
		return model.Todo{}, mapPgErr(err)
	}
	return out, nil
}

func (s *Store) ListTodos(ctx context.Context, f store.TodoFilter) ([]model.Todo, error) {
	rows, err := s.pool.Query(ctx, `
		select `+todoColumns+`
		from public.todos
		where user_id = $1
		  and ($2 = '' or strpos(title, $2) > 0)
		  and ($3 = '' or strpos(description, $3) > 0)
		  and ($4 = '' or state = $4)
		order by id
		offset $5
		limit $6
	`, f.UserID, f.Title, f.Description, string(f.State), max(f.Offset, 0), limitOrDefault(f.Limit))
	if err != nil {
		return nil, mapPgErr(err)
	}
	defer rows.Close()

	out := make([]model.Todo, 0)
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTodo(ctx context.Context, userID, id int64) (*model.Todo, error) {
	t, err := scanTodo(s.pool.QueryRow(ctx, `
		select `+todoColumns+`
		from public.todos
		where id = $1 and user_id = $2
	`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *Store) UpdateTodo(ctx context.Context, t model.Todo) (model.Todo, error) {
	out, err := scanTodo(s.pool.QueryRow(ctx, `
		update public.todos
		set title = $3,
		    description = $4,
		    state = $5
		where id = $1 and user_id = $2
		returning `+todoColumns,
		t.ID, t.UserID, t.Title, t.Description, string(t.State),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Todo{}, store.ErrNotFound
		}
		return model.Todo{}, mapPgErr(err)
	}
	return out, nil
}

func (s *Store) DeleteTodo(ctx context.Context, userID, id int64) error {
	tag, err := s.pool.Exec(ctx, `delete from public.todos where id = $1 and user_id = $2`, id, userID)
	if err != nil {
		return mapPgErr(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
