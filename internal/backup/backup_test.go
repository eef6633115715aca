package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"studiodesk/internal/core"
)

func TestFileName(t *testing.T) {
	day := time.Date(2024, 7, 1, 15, 30, 0, 0, time.UTC)
	if got := FileName(day); got != "backup_2024-07-01.db" {
		t.Errorf("FileName() = %v, want backup_2024-07-01.db", got)
	}
}

func TestBackupNowCopiesDatabase(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "studio.db")
	backupDir := filepath.Join(dir, "backups")

	if err := os.WriteFile(dbPath, []byte("db contents v1"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	m := NewManager(dbPath, backupDir)

	path, err := m.BackupNow(context.Background())
	if err != nil {
		t.Fatalf("BackupNow() error = %v", err)
	}

	wantPath := filepath.Join(backupDir, FileName(time.Now()))
	if path != wantPath {
		t.Errorf("BackupNow() path = %v, want %v", path, wantPath)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "db contents v1" {
		t.Errorf("backup contents = %q, want %q", got, "db contents v1")
	}

	date, lastPath := m.LastBackup()
	if date != time.Now().Format(core.DateLayout) {
		t.Errorf("LastBackup() date = %v, want today", date)
	}
	if lastPath != path {
		t.Errorf("LastBackup() path = %v, want %v", lastPath, path)
	}
}

func TestBackupNowMissingSource(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backups")

	m := NewManager(filepath.Join(dir, "missing.db"), backupDir)

	path, err := m.BackupNow(context.Background())
	if err != nil {
		t.Fatalf("BackupNow() error = %v, want nil for missing source", err)
	}
	if path != "" {
		t.Errorf("BackupNow() path = %v, want empty for skipped backup", path)
	}

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("backup directory has %d entries, want 0", len(entries))
	}

	if date, _ := m.LastBackup(); date != "" {
		t.Errorf("LastBackup() date = %v, want empty after skipped backup", date)
	}
}

func TestBackupNowSameDayOverwrite(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "studio.db")
	backupDir := filepath.Join(dir, "backups")
	m := NewManager(dbPath, backupDir)

	if err := os.WriteFile(dbPath, []byte("v1"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := m.BackupNow(context.Background()); err != nil {
		t.Fatalf("BackupNow() error = %v", err)
	}

	if err := os.WriteFile(dbPath, []byte("v2 longer contents"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	path, err := m.BackupNow(context.Background())
	if err != nil {
		t.Fatalf("BackupNow() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(got) != "v2 longer contents" {
		t.Errorf("backup contents = %q, want latest copy", got)
	}

	entries, err := os.ReadDir(backupDir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("backup directory has %d entries, want 1 per day", len(entries))
	}
}

func TestRunWritesInitialBackup(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "studio.db")
	backupDir := filepath.Join(dir, "backups")

	if err := os.WriteFile(dbPath, []byte("db contents"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	m := NewManager(dbPath, backupDir)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- m.Run(ctx, 10*time.Millisecond, time.Hour)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if date, _ := m.LastBackup(); date != "" {
			break
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("Run() wrote no backup within deadline")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() error = %v, want nil on cancellation", err)
	}

	wantPath := filepath.Join(backupDir, FileName(time.Now()))
	if _, err := os.Stat(wantPath); err != nil {
		t.Errorf("Stat(%v) error = %v, want backup file present", wantPath, err)
	}
}
