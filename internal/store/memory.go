package store

import (
	"context"
	"sync"
)

// Memory is an in-process UserStore fake used by tests and by deployments
// that don't need durable accounts (e.g. local development). It is not
// grounded on a specific teacher file — the teacher has no persistence
// layer at all — but it lets LoginHandler's tests exercise the real
// UserStore contract without a live Postgres instance, and cmd/mapleserver
// falls back to it when no database_url is configured.
type Memory struct {
	mu     sync.Mutex
	byName map[string]*User
	nextID int32
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{byName: make(map[string]*User)}
}

func (m *Memory) FindByUsername(ctx context.Context, username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.byName[username]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) Insert(ctx context.Context, newUser NewUser) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	u := &User{
		ID:            m.nextID,
		Username:      newUser.Username,
		PasswordHash:  newUser.PasswordHash,
		Salt:          newUser.Salt,
		IsAdmin:       newUser.IsAdmin,
		IsFemale:      newUser.IsFemale,
		LoggedIn:      newUser.LoggedIn,
		CreationTime:  newUser.CreationTime,
		BanReason:     newUser.BanReason,
		BanResetTime:  newUser.BanResetTime,
		MuteReason:    newUser.MuteReason,
		MuteResetTime: newUser.MuteResetTime,
		PinCode:       newUser.PinCode,
	}
	m.byName[u.Username] = u
	return *u, nil
}

func (m *Memory) UpdatePIN(ctx context.Context, userID int32, pin string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.byName {
		if u.ID == userID {
			p := pin
			u.PinCode = &p
			return nil
		}
	}
	return nil
}

var _ UserStore = (*Memory)(nil)
