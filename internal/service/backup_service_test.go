package service_test

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fardapack/crm-api/internal/config"
	"github.com/fardapack/crm-api/internal/database"
	"github.com/fardapack/crm-api/internal/service"
)

// writeDatabaseFile creates a real SQLite file with the full schema
func writeDatabaseFile(t *testing.T, path string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func newBackupService(t *testing.T) (*service.BackupService, string, string) {
	t.Helper()

	root := t.TempDir()
	livePath := filepath.Join(root, "data", "crm.db")
	backupDir := filepath.Join(root, "backups")

	svc := service.NewBackupService(
		&config.DatabaseConfig{Path: livePath},
		&config.BackupConfig{Dir: backupDir, MaxUploadSizeMB: 100},
		zap.NewNop(),
	)
	return svc, livePath, backupDir
}

func TestBackupService_Restore_PlainDatabase(t *testing.T) {
	svc, livePath, backupDir := newBackupService(t)
	ctx := context.Background()

	// Existing live database that should survive as a timestamped copy
	writeDatabaseFile(t, livePath)

	uploadPath := filepath.Join(t.TempDir(), "upload.db")
	writeDatabaseFile(t, uploadPath)
	payload, err := os.ReadFile(uploadPath)
	require.NoError(t, err)

	result, err := svc.Restore(ctx, "upload.db", int64(len(payload)), bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Contains(t, result.Message, "restart")
	assert.NotEmpty(t, result.BackupPath)

	// The pre-restore copy landed in the backup dir
	entries, err := os.ReadDir(backupDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "before_restore")

	// The live file is now the uploaded database
	restored, err := os.ReadFile(livePath)
	require.NoError(t, err)
	assert.Equal(t, payload, restored)
}

func TestBackupService_Restore_FromZip(t *testing.T) {
	svc, livePath, _ := newBackupService(t)
	ctx := context.Background()

	uploadPath := filepath.Join(t.TempDir(), "inner.db")
	writeDatabaseFile(t, uploadPath)
	payload, err := os.ReadFile(uploadPath)
	require.NoError(t, err)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entry, err := zw.Create("inner.db")
	require.NoError(t, err)
	_, err = entry.Write(payload)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = svc.Restore(ctx, "bundle.zip", int64(buf.Len()), bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	restored, err := os.ReadFile(livePath)
	require.NoError(t, err)
	assert.Equal(t, payload, restored)
}

func TestBackupService_Restore_Rejections(t *testing.T) {
	svc, livePath, _ := newBackupService(t)
	ctx := context.Background()

	writeDatabaseFile(t, livePath)
	before, err := os.ReadFile(livePath)
	require.NoError(t, err)

	t.Run("zip without a db entry", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		entry, err := zw.Create("readme.txt")
		require.NoError(t, err)
		_, err = entry.Write([]byte("not a database"))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		_, err = svc.Restore(ctx, "bundle.zip", int64(buf.Len()), bytes.NewReader(buf.Bytes()))
		assert.ErrorIs(t, err, service.ErrInvalidBackup)
	})

	t.Run("wrong extension", func(t *testing.T) {
		_, err := svc.Restore(ctx, "dump.sql", 10, bytes.NewReader([]byte("SELECT 1;\n")))
		assert.ErrorIs(t, err, service.ErrInvalidBackup)
	})

	t.Run("empty upload", func(t *testing.T) {
		_, err := svc.Restore(ctx, "upload.db", 0, bytes.NewReader(nil))
		assert.ErrorIs(t, err, service.ErrInvalidBackup)
	})

	t.Run("not a sqlite file", func(t *testing.T) {
		junk := []byte("definitely not sqlite")
		_, err := svc.Restore(ctx, "upload.db", int64(len(junk)), bytes.NewReader(junk))
		assert.ErrorIs(t, err, service.ErrInvalidBackup)
	})

	// None of the rejected uploads touched the live database
	after, err := os.ReadFile(livePath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
