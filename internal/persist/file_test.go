package persist_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"rms-sync-service/internal/domain"
	"rms-sync-service/internal/persist"
)

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "snapshot.json")
	f := persist.NewFile(path)
	ctx := context.Background()

	_, found, err := f.Load(ctx)
	require.NoError(t, err)
	require.False(t, found)

	snap := domain.Seed()
	require.NoError(t, f.Save(ctx, snap))

	loaded, found, err := f.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, loaded.Users, len(snap.Users))
	require.Len(t, loaded.Tables, len(snap.Tables))
	require.Equal(t, snap.MenuItems[0].ID, loaded.MenuItems[0].ID)
}

func TestFileCorruptSlotFallsBackToSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, found, err := persist.NewFile(path).Load(context.Background())
	require.NoError(t, err)
	require.False(t, found)
}

func TestFileSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	f := persist.NewFile(path)
	ctx := context.Background()

	snap := domain.Seed()
	require.NoError(t, f.Save(ctx, snap))

	snap.Users = snap.Users[:1]
	require.NoError(t, f.Save(ctx, snap))

	loaded, found, err := f.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, loaded.Users, 1)
}

func TestMemoryFailNextClears(t *testing.T) {
	mem := persist.NewMemory()
	ctx := context.Background()

	mem.FailNext = os.ErrClosed
	require.ErrorIs(t, mem.Save(ctx, domain.Seed()), os.ErrClosed)

	require.NoError(t, mem.Save(ctx, domain.Seed()))
	require.Equal(t, 1, mem.Saves)

	_, found, err := mem.Load(ctx)
	require.NoError(t, err)
	require.True(t, found)
}
