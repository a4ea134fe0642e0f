package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemory_BlocksAfterMaxFails(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(testPolicy)
	m.now = func() time.Time { return now }
	client := HashClient("10.0.0.1")

	for i := 0; i < testPolicy.MaxFails-1; i++ {
		blocked, _, err := m.Failure(ctx, "alice", client)
		require.NoError(t, err)
		require.False(t, blocked)
	}
	blocked, wait, err := m.Failure(ctx, "alice", client)
	require.NoError(t, err)
	require.True(t, blocked)
	require.Equal(t, testPolicy.BlockFor, wait)

	ok, wait, err := m.Allow(ctx, "alice", client)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, testPolicy.BlockFor, wait)

	// other clients and users are unaffected
	ok, _, _ = m.Allow(ctx, "alice", HashClient("10.0.0.2"))
	require.True(t, ok)
	ok, _, _ = m.Allow(ctx, "bob", client)
	require.True(t, ok)

	now = now.Add(testPolicy.BlockFor + time.Second)
	ok, _, _ = m.Allow(ctx, "alice", client)
	require.True(t, ok)
}

func TestMemory_WindowResets(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMemory(testPolicy)
	m.now = func() time.Time { return now }

	for i := 0; i < testPolicy.MaxFails-1; i++ {
		_, _, _ = m.Failure(ctx, "alice", nil)
	}
	now = now.Add(testPolicy.Window + time.Second)
	blocked, _, err := m.Failure(ctx, "alice", nil)
	require.NoError(t, err)
	require.False(t, blocked)
}

func TestMemory_SuccessClears(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(testPolicy)

	for i := 0; i < testPolicy.MaxFails-1; i++ {
		_, _, _ = m.Failure(ctx, "alice", nil)
	}
	require.NoError(t, m.Success(ctx, "alice", nil))
	blocked, _, err := m.Failure(ctx, "alice", nil)
	require.NoError(t, err)
	require.False(t, blocked)
}

func TestNop(t *testing.T) {
	var l Limiter = Nop{}
	ok, _, err := l.Allow(context.Background(), "u", nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, Policy{}.Enabled())
}

func TestHashClient_Stable(t *testing.T) {
	require.Equal(t, HashClient("1.2.3.4"), HashClient("1.2.3.4"))
	require.NotEqual(t, HashClient("1.2.3.4"), HashClient("1.2.3.5"))
	require.Len(t, HashClient("x"), 32)
}

var (
	_ Limiter = (*Memory)(nil)
	_ Limiter = (*PG)(nil)
	_ Limiter = Nop{}
)
