package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryFindMissing(t *testing.T) {
	m := NewMemory()
	u, err := m.FindByUsername(context.Background(), "nobody")
	require.NoError(t, err)
	require.Nil(t, u)
}

func TestMemoryInsertAndFind(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	created, err := m.Insert(ctx, NewUser{
		Username:     "bob",
		PasswordHash: "hash",
		CreationTime: time.Unix(0, 0),
		BanResetTime: time.Unix(0, 0),
		MuteResetTime: time.Unix(0, 0),
	})
	require.NoError(t, err)
	require.Equal(t, int32(1), created.ID)

	found, err := m.FindByUsername(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, created.ID, found.ID)
}

func TestMemoryUpdatePIN(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	created, err := m.Insert(ctx, NewUser{Username: "bob"})
	require.NoError(t, err)

	require.NoError(t, m.UpdatePIN(ctx, created.ID, "1234"))

	found, err := m.FindByUsername(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, found.PinCode)
	require.Equal(t, "1234", *found.PinCode)
}

func TestUserBanned(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	u := User{BanResetTime: now.Add(time.Hour)}
	require.True(t, u.Banned(now))

	u2 := User{BanResetTime: now.Add(-time.Hour)}
	require.False(t, u2.Banned(now))
}
