package service

import (
	"archive/zip"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/fardapack/crm-api/internal/config"
	"github.com/fardapack/crm-api/internal/domain"
)

// requiredTables must all exist in an uploaded database for a restore to
// proceed. The sessions table is recreated on startup, so older backups
// without it are accepted.
var requiredTables = []string{
	"companies",
	"contacts",
	"calls",
	"followups",
	"accounts",
	"products",
	"orders",
}

// BackupService streams and replaces the SQLite database file. Restores
// validate the candidate fully before the live file is touched; the
// process must be restarted afterwards to drop stale connections.
type BackupService struct {
	cfg    *config.DatabaseConfig
	backup *config.BackupConfig
	logger *zap.Logger
}

func NewBackupService(cfg *config.DatabaseConfig, backup *config.BackupConfig, logger *zap.Logger) *BackupService {
	return &BackupService{
		cfg:    cfg,
		backup: backup,
		logger: logger,
	}
}

// DatabasePath returns the live database file path for download streaming
func (s *BackupService) DatabasePath() string {
	return s.cfg.Path
}

// Restore validates an uploaded .db or .zip and atomically swaps it in
// place of the live database. The previous database is kept as a
// timestamped copy in the backup directory.
func (s *BackupService) Restore(ctx context.Context, filename string, size int64, upload io.Reader) (*domain.RestoreResultDTO, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != ".db" && ext != ".zip" {
		return nil, ErrInvalidBackup
	}
	if size == 0 {
		return nil, ErrInvalidBackup
	}

	liveDir := filepath.Dir(s.cfg.Path)
	if err := os.MkdirAll(liveDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	if err := os.MkdirAll(s.backup.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	// The candidate lives next to the real file so the final rename stays
	// on one filesystem.
	candidate, err := os.CreateTemp(liveDir, "restore-*.db")
	if err != nil {
		return nil, fmt.Errorf("failed to create candidate file: %w", err)
	}
	candidatePath := candidate.Name()
	defer os.Remove(candidatePath)

	if ext == ".zip" {
		err = extractDatabaseFromZip(candidate, upload)
	} else {
		_, err = io.Copy(candidate, upload)
	}
	if closeErr := candidate.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if errors.Is(err, ErrInvalidBackup) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to write candidate file: %w", err)
	}

	if err := s.validateCandidate(ctx, candidatePath); err != nil {
		return nil, err
	}

	backupPath := ""
	if _, err := os.Stat(s.cfg.Path); err == nil {
		base := strings.TrimSuffix(filepath.Base(s.cfg.Path), filepath.Ext(s.cfg.Path))
		stamp := time.Now().UTC().Format("20060102_150405")
		backupPath = filepath.Join(s.backup.Dir, fmt.Sprintf("%s_before_restore_%s.db", base, stamp))
		if err := copyFile(s.cfg.Path, backupPath); err != nil {
			return nil, fmt.Errorf("failed to back up live database: %w", err)
		}
	}

	if err := os.Rename(candidatePath, s.cfg.Path); err != nil {
		return nil, fmt.Errorf("failed to replace database: %w", err)
	}

	s.logger.Warn("database restored from upload",
		zap.String("filename", filename),
		zap.String("backup_path", backupPath),
	)

	return &domain.RestoreResultDTO{
		BackupPath: backupPath,
		Message:    "database restored, restart the service to load it",
	}, nil
}

// validateCandidate opens the candidate read-only and checks integrity
// and schema before anything irreversible happens.
func (s *BackupService) validateCandidate(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return ErrInvalidBackup
	}
	defer db.Close()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return ErrInvalidBackup
	}
	if result != "ok" {
		s.logger.Warn("restore candidate failed integrity check", zap.String("result", result))
		return ErrInvalidBackup
	}

	rows, err := db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table'")
	if err != nil {
		return ErrInvalidBackup
	}
	defer rows.Close()

	present := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return ErrInvalidBackup
		}
		present[name] = true
	}
	if err := rows.Err(); err != nil {
		return ErrInvalidBackup
	}

	for _, table := range requiredTables {
		if !present[table] {
			s.logger.Warn("restore candidate missing table", zap.String("table", table))
			return ErrInvalidBackup
		}
	}
	return nil
}

// extractDatabaseFromZip copies the first .db entry of the archive into
// dst. Archives without a .db entry are rejected.
func extractDatabaseFromZip(dst *os.File, upload io.Reader) error {
	buffered, err := os.CreateTemp("", "upload-*.zip")
	if err != nil {
		return err
	}
	defer os.Remove(buffered.Name())
	defer buffered.Close()

	written, err := io.Copy(buffered, upload)
	if err != nil {
		return err
	}

	reader, err := zip.NewReader(buffered, written)
	if err != nil {
		return ErrInvalidBackup
	}

	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name)) != ".db" {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return ErrInvalidBackup
		}
		_, err = io.Copy(dst, rc)
		rc.Close()
		return err
	}
	return ErrInvalidBackup
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
