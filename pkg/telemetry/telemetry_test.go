package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/soundprediction/hskg/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parquetFiles(t *testing.T, dir string) []string {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(dir, "*.parquet"))
	require.NoError(t, err)
	return files
}

func TestParquetHandler(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	h, err := NewParquetHandlerWithBatch(slog.NewTextHandler(&buf, nil), dir, 2)
	require.NoError(t, err)

	ctx := WithRequestSource(WithSession(context.Background(), "u-1", "s-1"), "http")
	logger := slog.New(h).With("component", "storage")

	logger.InfoContext(ctx, "saved graph")
	logger.ErrorContext(ctx, "save failed", "graph_id", "g-1")
	assert.Empty(t, parquetFiles(t, dir))

	logger.Error("load failed")
	files := parquetFiles(t, dir)
	require.Len(t, files, 1)

	records, err := ReadRecords(files[0])
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "save failed", records[0].Message)
	assert.Equal(t, "ERROR", records[0].Level)
	assert.Equal(t, "u-1", records[0].UserID)
	assert.Equal(t, "s-1", records[0].SessionID)
	assert.Equal(t, "http", records[0].RequestSource)
	assert.JSONEq(t, `{"component":"storage","graph_id":"g-1"}`, records[0].Attributes)
	assert.Equal(t, "", records[1].RequestSource)

	// Every record reaches the next handler.
	assert.Contains(t, buf.String(), "saved graph")
	assert.Contains(t, buf.String(), "load failed")
}

func TestParquetHandlerFlush(t *testing.T) {
	dir := t.TempDir()
	h, err := NewParquetHandler(slog.NewTextHandler(&bytes.Buffer{}, nil), dir)
	require.NoError(t, err)

	require.NoError(t, h.Close())
	assert.Empty(t, parquetFiles(t, dir))

	slog.New(h).WithGroup("g").Error("boom")
	require.NoError(t, h.Flush())
	assert.Len(t, parquetFiles(t, dir), 1)
}

func TestSQLHandler(t *testing.T) {
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "telemetry.db"))
	require.NoError(t, err)
	defer db.Close()

	h, err := NewSQLHandler(slog.NewTextHandler(&bytes.Buffer{}, nil), db)
	require.NoError(t, err)

	logger := slog.New(h)
	ctx := WithRequestSource(context.Background(), "cli")
	logger.WarnContext(ctx, "slow")
	logger.With("graph_id", "g-2").ErrorContext(ctx, "delete failed")

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM telemetry_logs").Scan(&count))
	assert.Equal(t, 1, count)

	var msg, source, attrs string
	require.NoError(t, db.QueryRow("SELECT message, request_source, attributes FROM telemetry_logs").Scan(&msg, &source, &attrs))
	assert.Equal(t, "delete failed", msg)
	assert.Equal(t, "cli", source)
	assert.JSONEq(t, `{"graph_id":"g-2"}`, attrs)
}

func TestNewHandler(t *testing.T) {
	dir := t.TempDir()
	next := slog.NewTextHandler(&bytes.Buffer{}, nil)

	h, closeFn, err := NewHandler(next, config.TelemetryConfig{})
	require.NoError(t, err)
	assert.Same(t, next, h)
	require.NoError(t, closeFn())

	cfg := config.TelemetryConfig{
		ParquetPath: filepath.Join(dir, "parquet"),
		DbURL:       "sqlite://" + filepath.Join(dir, "telemetry.db"),
	}
	h, closeFn, err = NewHandler(next, cfg)
	require.NoError(t, err)
	assert.IsType(t, &SQLHandler{}, h)

	slog.New(h).Error("boom")
	require.NoError(t, closeFn())
	assert.Len(t, parquetFiles(t, cfg.ParquetPath), 1)

	_, err = os.Stat(filepath.Join(dir, "telemetry.db"))
	assert.NoError(t, err)
}
