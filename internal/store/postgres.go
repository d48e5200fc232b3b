package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is the concrete UserStore backing production deployments,
// against the schema original_source/src/db/schema.rs declares via
// Diesel's `table!` macro:
//
//	users(id, username) {
//	    id -> Integer, username -> Varchar, is_female -> Bool,
//	    is_admin -> Bool, logged_in -> Bool, password -> Varchar,
//	    salt -> Bytea, pin_code -> Nullable<Varchar>,
//	    creation_date -> Timestamp, ban_reason -> SmallInt,
//	    ban_reset_date -> Timestamp, mute_reason -> SmallInt,
//	    mute_reset_date -> Timestamp,
//	}
//
// original_source/src/db/db.rs lazily initializes a single process-wide
// r2d2 connection pool behind a OnceCell and hands out pooled connections
// per operation. This core follows the same shape with pgxpool.Pool, but
// per spec.md §9 ("treat it as a capability passed to handlers, not a
// process-global") the pool is owned by a Postgres value: NewPostgres,
// called once by cmd/mapleserver, builds it, and the resulting store is
// injected into the login handler rather than reached for through a
// global, which keeps tests deterministic.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects a pooled client to databaseURL. Mirrors
// db.rs::DBPool::init, but returns the pool to the caller instead of
// stashing it behind a package-level singleton.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("store: connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping postgres: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close releases the pool's connections.
func (p *Postgres) Close() {
	p.pool.Close()
}

const userColumns = `id, username, is_female, is_admin, logged_in, password, salt,
	pin_code, creation_date, ban_reason, ban_reset_date, mute_reason, mute_reset_date`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(
		&u.ID, &u.Username, &u.IsFemale, &u.IsAdmin, &u.LoggedIn, &u.PasswordHash, &u.Salt,
		&u.PinCode, &u.CreationTime, &u.BanReason, &u.BanResetTime, &u.MuteReason, &u.MuteResetTime,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByUsername mirrors user.rs::User::get_by_username: a NotFound result
// is not an error, it's a nil User.
func (p *Postgres) FindByUsername(ctx context.Context, username string) (*User, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: find by username: %w", err)
	}
	return u, nil
}

// Insert mirrors user.rs::User::create, returning the server-assigned id.
func (p *Postgres) Insert(ctx context.Context, newUser NewUser) (User, error) {
	row := p.pool.QueryRow(ctx, `
		INSERT INTO users (username, is_female, is_admin, logged_in, password, salt,
			pin_code, creation_date, ban_reason, ban_reset_date, mute_reason, mute_reset_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+userColumns,
		newUser.Username, newUser.IsFemale, newUser.IsAdmin, newUser.LoggedIn,
		newUser.PasswordHash, newUser.Salt, newUser.PinCode, newUser.CreationTime,
		newUser.BanReason, newUser.BanResetTime, newUser.MuteReason, newUser.MuteResetTime,
	)
	u, err := scanUser(row)
	if err != nil {
		return User{}, fmt.Errorf("store: insert user: %w", err)
	}
	return *u, nil
}

// UpdatePIN mirrors user.rs::User::update_pin_code.
func (p *Postgres) UpdatePIN(ctx context.Context, userID int32, pin string) error {
	_, err := p.pool.Exec(ctx, `UPDATE users SET pin_code = $1 WHERE id = $2`, pin, userID)
	if err != nil {
		return fmt.Errorf("store: update pin: %w", err)
	}
	return nil
}

var _ UserStore = (*Postgres)(nil)
