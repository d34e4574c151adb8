package postgres

const schema = `
create or replace function set_updated_at()
returns trigger as $$
begin
	new.updated_at = now();
	return new;
end;
$$ language plpgsql;

create table if not exists public.users (
	id bigserial primary key,
	username text not null,
	email text not null,
	password_hash text not null,
	created_at timestamptz not null default now(),
	updated_at timestamptz not null default now(),
	constraint users_username_key unique (username),
	constraint users_email_key unique (email),
	constraint users_username_not_blank check (btrim(username) <> ''),
	constraint users_email_not_blank check (btrim(email) <> '')
);

drop trigger if exists trg_users_updated_at on public.users;
create trigger trg_users_updated_at
before update on public.users
for each row execute function set_updated_at();

create table if not exists public.todos (
	id bigserial primary key,
	title text not null,
	description text not null default '',
	state text not null check (state in ('draft', 'todo', 'doing', 'done', 'trash')),
	user_id bigint not null references public.users (id) on delete cascade,
	created_at timestamptz not null default now(),
	updated_at timestamptz not null default now()
);

create index if not exists idx_todos_user_id on public.todos (user_id);

drop trigger if exists trg_todos_updated_at on public.todos;
create trigger trg_todos_updated_at
before update on public.todos
for each row execute function set_updated_at();
`
