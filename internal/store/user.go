// Package store defines the UserStore capability the login handler
// consumes (spec.md §4.G), plus a Postgres-backed implementation and an
// in-memory fake for tests.
//
// Grounded on original_source/src/db/model/user.rs and
// original_source/src/db/schema.rs — the Diesel/Postgres column types
// there (Varchar, Bytea, Timestamp, SmallInt) are the schema spec.md §6
// describes only as an attribute set.
package store

import (
	"context"
	"time"
)

// User is the attribute set the core needs, per spec.md §3 "User".
type User struct {
	ID           int32
	Username     string
	PasswordHash string
	Salt         []byte
	LoggedIn     bool
	IsAdmin      bool
	IsFemale     bool
	CreationTime time.Time
	BanReason    int16
	BanResetTime time.Time
	MuteReason   int16
	MuteResetTime time.Time
	PinCode      *string
}

// Banned reports whether the account's ban is currently active, per the
// invariant in spec.md §3: "ban_reset_time <= now => ban inactive".
func (u User) Banned(now time.Time) bool {
	return u.BanResetTime.After(now)
}

// NewUser is the attribute set required to insert a row, matching
// original_source/src/db/model/user.rs's NewUser (minus the server-assigned
// id).
type NewUser struct {
	Username     string
	PasswordHash string
	Salt         []byte
	IsAdmin      bool
	IsFemale     bool
	LoggedIn     bool
	CreationTime time.Time
	BanReason    int16
	BanResetTime time.Time
	MuteReason   int16
	MuteResetTime time.Time
	PinCode      *string
}

// UserStore is the persistence capability the login handler depends on.
// spec.md deliberately scopes the implementation out of the core; this
// interface is the contract (component G).
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	Insert(ctx context.Context, newUser NewUser) (User, error)
	UpdatePIN(ctx context.Context, userID int32, pin string) error
}
