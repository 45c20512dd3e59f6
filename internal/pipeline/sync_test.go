package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apiscout/internal/storage"
)

func TestAnalyzableChanges(t *testing.T) {
	files := []string{
		"src/api/client.ts",
		"src/pages/Checkout.vue",
		"README.md",
		"go.sum",
		"src/App.tsx",
	}

	got := analyzableChanges(files)
	assert.Equal(t, []string{"src/api/client.ts", "src/pages/Checkout.vue", "src/App.tsx"}, got)
	assert.Nil(t, analyzableChanges(nil))
}

func TestSync_Run_PersistsSurface(t *testing.T) {
	root := t.TempDir()
	appPath := filepath.Join(root, "app.ts")
	require.NoError(t, os.WriteFile(appPath, []byte(`export const load = () => fetch("/api/users");`), 0o644))

	dbPath := filepath.Join(t.TempDir(), "apiscout.db")
	sync := NewSync(dbPath, root)

	require.NoError(t, sync.Run(context.Background(), false))

	store, err := storage.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	snap, err := store.LoadSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Endpoints, 1)
	assert.Equal(t, "GET /api/users", snap.Endpoints[0].Key())
	assert.Equal(t, root, snap.Root)
}

func TestSync_Run_TracksDrift(t *testing.T) {
	root := t.TempDir()
	appPath := filepath.Join(root, "app.ts")
	require.NoError(t, os.WriteFile(appPath, []byte(`export const load = () => fetch("/api/users");`), 0o644))

	dbPath := filepath.Join(t.TempDir(), "apiscout.db")
	sync := NewSync(dbPath, root)
	require.NoError(t, sync.Run(context.Background(), false))

	// The tree is not a git repository, so every run rescans; the second
	// run must observe the new endpoint and drop the old one.
	require.NoError(t, os.WriteFile(appPath, []byte(`export const load = () => fetch("/api/orders");`), 0o644))
	require.NoError(t, sync.Run(context.Background(), false))

	store, err := storage.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer store.Close()

	snap, err := store.LoadSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Endpoints, 1)
	assert.Equal(t, "GET /api/orders", snap.Endpoints[0].Key())
}
