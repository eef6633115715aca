// Package backup writes dated copies of the SQLite database file and runs
// the periodic schedule that produces them.
package backup

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"studiodesk/internal/core"
)

// Manager copies the database file into the backup directory. One backup
// file exists per calendar day; a second backup on the same day overwrites
// the first.
type Manager struct {
	dbPath    string
	backupDir string

	mu             sync.Mutex
	lastBackupDate string
	lastBackupPath string
}

func NewManager(dbPath, backupDir string) *Manager {
	return &Manager{
		dbPath:    dbPath,
		backupDir: backupDir,
	}
}

// FileName returns the backup file name for the given day.
func FileName(t time.Time) string {
	return fmt.Sprintf("backup_%s.db", t.Format(core.DateLayout))
}

// BackupNow copies the database file to the backup directory and returns the
// backup path. A missing database file is not an error: there is nothing to
// protect yet, so the backup is skipped with a warning.
func (m *Manager) BackupNow(ctx context.Context) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		slog.WarnContext(ctx, "Database file missing, skipping backup", "path", m.dbPath)
		return "", nil
	}

	now := time.Now()
	dstPath := filepath.Join(m.backupDir, FileName(now))

	size, err := copyFile(m.dbPath, dstPath)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.lastBackupDate = now.Format(core.DateLayout)
	m.lastBackupPath = dstPath
	m.mu.Unlock()

	slog.InfoContext(ctx, "Backup written", "path", dstPath, "size_bytes", size)

	return dstPath, nil
}

// LastBackup returns the date (YYYY-MM-DD) and path of the most recent
// backup written by this manager. Both are empty before the first backup.
func (m *Manager) LastBackup() (date, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastBackupDate, m.lastBackupPath
}

// Run writes a first backup after initialDelay and then one per interval
// tick until ctx is cancelled. Failed backups are logged and the schedule
// keeps going; the next tick retries.
func (m *Manager) Run(ctx context.Context, initialDelay, interval time.Duration) error {
	timer := time.NewTimer(initialDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil
	case <-timer.C:
		if _, err := m.BackupNow(ctx); err != nil {
			slog.ErrorContext(ctx, "Initial backup failed", "error", err)
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := m.BackupNow(ctx); err != nil {
				slog.ErrorContext(ctx, "Scheduled backup failed", "error", err)
			}
		}
	}
}

func copyFile(srcPath, dstPath string) (int64, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return 0, fmt.Errorf("open database file: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return 0, fmt.Errorf("create backup file: %w", err)
	}

	size, err := io.Copy(dst, src)
	if err != nil {
		dst.Close()
		return 0, fmt.Errorf("copy database file: %w", err)
	}

	if err := dst.Sync(); err != nil {
		dst.Close()
		return 0, fmt.Errorf("sync backup file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return 0, fmt.Errorf("close backup file: %w", err)
	}

	return size, nil
}
