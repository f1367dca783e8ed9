package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// MaxAutoBackups is how many automatic backups AutoBackup keeps per directory.
const MaxAutoBackups = 5

const autoBackupPrefix = "auto-"

// ErrBackupExists is returned when the backup destination already exists.
var ErrBackupExists = errors.New("backup destination already exists")

// Backup describes a point-in-time copy of the prediction history.
type Backup struct {
	CreatedAt   time.Time
	Path        string
	Predictions int
	Size        int64
}

// BackupTo writes a consistent copy of the database to dest and verifies it.
// dest must not exist.
func (s *SQLiteStorage) BackupTo(ctx context.Context, dest string, now time.Time) (*Backup, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(dest, "dest"); err != nil {
		return nil, err
	}

	dest, err := filepath.Abs(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve backup path: %w", err)
	}
	if strings.ContainsAny(dest, `'";`) {
		return nil, fmt.Errorf("invalid backup path %q: contains forbidden characters", dest)
	}
	if _, err := os.Stat(dest); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrBackupExists, dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0750); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	if s.dbPath != ":memory:" {
		if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			return nil, fmt.Errorf("failed to checkpoint WAL: %w", err)
		}
	}

	// #nosec G201 - dest is checked for quote and statement characters above
	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("VACUUM INTO '%s'", dest)); err != nil {
		return nil, fmt.Errorf("failed to copy database: %w", err)
	}

	count, err := verifyBackup(ctx, dest)
	if err != nil {
		_ = os.Remove(dest)
		return nil, err
	}

	info, err := os.Stat(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup: %w", err)
	}

	return &Backup{
		CreatedAt:   now,
		Path:        dest,
		Predictions: count,
		Size:        info.Size(),
	}, nil
}

// AutoBackup writes a timestamped backup into dir before a destructive
// operation and removes all but the newest MaxAutoBackups automatic backups.
func (s *SQLiteStorage) AutoBackup(ctx context.Context, dir, reason string, now time.Time) (*Backup, error) {
	name := fmt.Sprintf("%s%s-%s.db", autoBackupPrefix, now.UTC().Format("20060102-150405"), reason)
	backup, err := s.BackupTo(ctx, filepath.Join(dir, name), now)
	if err != nil {
		return nil, fmt.Errorf("failed to create automatic backup: %w", err)
	}

	if err := pruneAutoBackups(dir); err != nil {
		slog.Warn("Failed to remove old automatic backups", "dir", dir, "error", err)
	}
	return backup, nil
}

// AutoBackups lists the automatic backups in dir, newest first.
func AutoBackups(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, autoBackupPrefix+"*.db"))
	if err != nil {
		return nil, err
	}
	// Names embed a sortable UTC timestamp.
	slices.Sort(matches)
	slices.Reverse(matches)
	return matches, nil
}

func pruneAutoBackups(dir string) error {
	backups, err := AutoBackups(dir)
	if err != nil {
		return err
	}
	if len(backups) <= MaxAutoBackups {
		return nil
	}

	var errs []error
	for _, path := range backups[MaxAutoBackups:] {
		if err := os.Remove(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func verifyBackup(ctx context.Context, path string) (int, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return 0, fmt.Errorf("failed to open backup: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close backup database", "error", err)
		}
	}()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return 0, fmt.Errorf("failed to check backup integrity: %w", err)
	}
	if result != "ok" {
		return 0, fmt.Errorf("backup integrity check failed: %s", result)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM predictions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count backed up predictions: %w", err)
	}
	return count, nil
}
