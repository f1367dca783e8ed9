package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupTo(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.SavePrediction(ctx, testPrediction("p-1", 1, 0.9, baseTime)))
	require.NoError(t, store.SavePrediction(ctx, testPrediction("p-2", 2, 0.1, baseTime)))

	dest := filepath.Join(t.TempDir(), "nested", "history.db")
	backup, err := store.BackupTo(ctx, dest, baseTime)
	require.NoError(t, err)

	assert.Equal(t, dest, backup.Path)
	assert.Equal(t, 2, backup.Predictions)
	assert.Equal(t, baseTime, backup.CreatedAt)
	assert.Positive(t, backup.Size)

	restored, err := NewSQLiteStorage(dest)
	require.NoError(t, err)
	defer func() { _ = restored.Close() }()
	require.NoError(t, restored.Migrate(ctx))

	got, err := restored.GetPrediction(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.CustomerID)
}

func TestBackupTo_Errors(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	existing := filepath.Join(t.TempDir(), "taken.db")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o600))

	tests := []struct {
		wantErr error
		name    string
		dest    string
	}{
		{name: "empty path", dest: "", wantErr: ErrEmptyString},
		{name: "existing file", dest: existing, wantErr: ErrBackupExists},
		{name: "quote in path", dest: filepath.Join(t.TempDir(), "it's.db")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.BackupTo(ctx, tt.dest, baseTime)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestAutoBackup_KeepsNewest(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()
	dir := t.TempDir()

	var last *Backup
	for i := range MaxAutoBackups + 2 {
		backup, err := store.AutoBackup(ctx, dir, "prune", baseTime.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		last = backup
	}

	backups, err := AutoBackups(dir)
	require.NoError(t, err)
	require.Len(t, backups, MaxAutoBackups)
	assert.Equal(t, last.Path, backups[0])
	assert.Equal(t, "auto-20240501-093600-prune.db", filepath.Base(backups[0]))
	assert.Equal(t, "auto-20240501-093200-prune.db", filepath.Base(backups[MaxAutoBackups-1]))
}

func TestAutoBackups_EmptyDir(t *testing.T) {
	backups, err := AutoBackups(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, backups)
}
